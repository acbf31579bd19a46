package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yuqie6/DayMirror/internal/ai"
	"github.com/yuqie6/DayMirror/internal/eventbus"
	"github.com/yuqie6/DayMirror/internal/repository"
	"github.com/yuqie6/DayMirror/internal/schema"
	"github.com/yuqie6/DayMirror/internal/testutil"
)

// stubAnalyzer 返回固定结果的分析器桩
type stubAnalyzer struct {
	activities   []schema.Activity
	parseOutcome ai.ParseOutcome
	parseErr     error
	daily        *schema.DailyAnalysis
	dailyErr     error
	weekly       *ai.WeeklyAnalysisResult
	weeklyErr    error
	screenTime   schema.ScreenTime
	screenErr    error
	configured   bool
	vision       bool
}

func (s *stubAnalyzer) GenerateDailyAnalysis(ctx context.Context, record *schema.DailyRecord, pastRecords []schema.DailyRecord, pastAnalyses []schema.DailyAnalysis, memories []string) (*schema.DailyAnalysis, error) {
	if s.dailyErr != nil {
		return nil, s.dailyErr
	}
	out := *s.daily
	out.Date = record.Date
	return &out, nil
}

func (s *stubAnalyzer) ParseActivities(ctx context.Context, date, rawInput string) ([]schema.Activity, ai.ParseOutcome, error) {
	return s.activities, s.parseOutcome, s.parseErr
}

func (s *stubAnalyzer) GenerateWeeklyAnalysis(ctx context.Context, weekID string, records []schema.DailyRecord, analyses []schema.DailyAnalysis, lastWeek *schema.WeeklyAnalysis) (*ai.WeeklyAnalysisResult, error) {
	return s.weekly, s.weeklyErr
}

func (s *stubAnalyzer) ExtractScreenTime(ctx context.Context, imageBytes []byte, mimeType string) (schema.ScreenTime, error) {
	return s.screenTime, s.screenErr
}

func (s *stubAnalyzer) IsConfigured() bool { return s.configured }
func (s *stubAnalyzer) HasVision() bool    { return s.vision }

func newRecordService(t *testing.T, analyzer *stubAnalyzer) (*RecordService, *repository.RecordRepository) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	repo := repository.NewRecordRepository(db)
	return NewRecordService(repo, analyzer, nil, eventbus.NewHub()), repo
}

func TestRecordServiceCreate(t *testing.T) {
	analyzer := &stubAnalyzer{
		configured:   true,
		parseOutcome: ai.ParseOK,
		activities: []schema.Activity{
			{StartTime: "08:00", Activity: "写代码", Category: schema.CategoryWork, IsProductive: true},
		},
	}
	svc, _ := newRecordService(t, analyzer)
	ctx := context.Background()

	got, err := svc.Create(ctx, &RecordInput{
		Date:           "2026-02-16",
		RawInput:       "8点起床，上午写代码",
		TasksPlanned:   []string{"写周报", "跑步"},
		TasksCompleted: []string{"写周报"},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(got.Activities) != 1 {
		t.Fatalf("应带上解析出的行为列表: %+v", got.Activities)
	}
	// 完成率由服务端重算
	if got.CompletionRate != 0.5 {
		t.Fatalf("CompletionRate=%v, want 0.5", got.CompletionRate)
	}

	// 同日期重复创建
	_, err = svc.Create(ctx, &RecordInput{Date: "2026-02-16"})
	if !errors.Is(err, ErrRecordExists) {
		t.Fatalf("err=%v, want ErrRecordExists", err)
	}

	// 非法日期
	_, err = svc.Create(ctx, &RecordInput{Date: "02/16/2026"})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("err=%v, want ErrInvalidDate", err)
	}
}

func TestRecordServiceCreateParseFailureNonFatal(t *testing.T) {
	analyzer := &stubAnalyzer{
		configured:   true,
		parseOutcome: ai.ParseBackendError,
		parseErr:     errors.New("connection refused"),
	}
	svc, _ := newRecordService(t, analyzer)

	got, err := svc.Create(context.Background(), &RecordInput{Date: "2026-02-16", RawInput: "写了一天代码"})
	if err != nil {
		t.Fatalf("解析失败不应阻塞写入: %v", err)
	}
	if got.Activities == nil || len(got.Activities) != 0 {
		t.Fatalf("解析失败应存空列表: %+v", got.Activities)
	}
}

func TestRecordServiceCompletionRateZeroWhenNoPlanned(t *testing.T) {
	svc, _ := newRecordService(t, &stubAnalyzer{})

	got, err := svc.Create(context.Background(), &RecordInput{
		Date:           "2026-02-16",
		TasksCompleted: []string{"临时加的任务"},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.CompletionRate != 0 {
		t.Fatalf("无计划任务时完成率应为 0, got %v", got.CompletionRate)
	}
}

func TestRecordServiceUpdateReparsesOnTextChange(t *testing.T) {
	analyzer := &stubAnalyzer{configured: true, parseOutcome: ai.ParseOK,
		activities: []schema.Activity{{Activity: "旧行为", Category: schema.CategoryLife}}}
	svc, _ := newRecordService(t, analyzer)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &RecordInput{Date: "2026-02-16", RawInput: "旧文本"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// 文本没变不重新解析，行为列表保持
	analyzer.activities = []schema.Activity{{Activity: "新行为", Category: schema.CategoryWork}}
	got, err := svc.Update(ctx, &RecordInput{Date: "2026-02-16", RawInput: "旧文本", TasksPlanned: []string{"a"}})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(got.Activities) != 1 || got.Activities[0].Activity != "旧行为" {
		t.Fatalf("文本未变不应重新解析: %+v", got.Activities)
	}

	// 文本变化触发重新解析
	got, err = svc.Update(ctx, &RecordInput{Date: "2026-02-16", RawInput: "新文本"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(got.Activities) != 1 || got.Activities[0].Activity != "新行为" {
		t.Fatalf("文本变化应重新解析: %+v", got.Activities)
	}

	// 不存在的日期
	if _, err := svc.Update(ctx, &RecordInput{Date: "2026-02-17"}); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err=%v, want ErrRecordNotFound", err)
	}
}

func TestRecordServiceIngestScreenshot(t *testing.T) {
	analyzer := &stubAnalyzer{
		configured: true,
		vision:     true,
		screenTime: schema.ScreenTime{
			Apps:                 []schema.ScreenTimeApp{{Name: "YouTube", DurationMinutes: 90}},
			TotalMinutes:         90,
			ExtractionConfidence: "high",
		},
	}
	svc, repo := newRecordService(t, analyzer)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &RecordInput{Date: "2026-02-16", RawInput: "原始文本"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	st, err := svc.IngestScreenshot(ctx, "2026-02-16", []byte{0xff, 0xd8}, "image/jpeg")
	if err != nil {
		t.Fatalf("IngestScreenshot error: %v", err)
	}
	if st.TotalMinutes != 90 {
		t.Fatalf("TotalMinutes=%d, want 90", st.TotalMinutes)
	}

	got, err := repo.GetByDate(ctx, "2026-02-16")
	if err != nil {
		t.Fatalf("GetByDate error: %v", err)
	}
	if !got.ScreenTime.Present() || got.RawInput != "原始文本" {
		t.Fatalf("应只回写 screen_time 列: %+v", got)
	}

	// 记录不存在
	if _, err := svc.IngestScreenshot(ctx, "2026-02-17", []byte{1}, "image/png"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err=%v, want ErrRecordNotFound", err)
	}

	// 视觉模型未配置
	analyzer.screenErr = ai.ErrAIUnconfigured
	if _, err := svc.IngestScreenshot(ctx, "2026-02-16", []byte{1}, "image/png"); !errors.Is(err, ai.ErrAIUnconfigured) {
		t.Fatalf("err=%v, want ErrAIUnconfigured", err)
	}
}

func TestRecordServiceDelete(t *testing.T) {
	svc, _ := newRecordService(t, &stubAnalyzer{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, &RecordInput{Date: "2026-02-16"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := svc.Delete(ctx, "2026-02-16"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := svc.Delete(ctx, "2026-02-16"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err=%v, want ErrRecordNotFound", err)
	}
}
