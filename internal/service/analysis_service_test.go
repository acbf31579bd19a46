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

func newAnalysisService(t *testing.T, analyzer *stubAnalyzer) (*AnalysisService, *repository.RecordRepository) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	records := repository.NewRecordRepository(db)
	analyses := repository.NewAnalysisRepository(db)
	return NewAnalysisService(records, analyses, analyzer, nil, eventbus.NewHub()), records
}

func TestAnalysisServiceGenerate(t *testing.T) {
	analyzer := &stubAnalyzer{
		configured: true,
		daily: &schema.DailyAnalysis{
			ProductiveHours: 6,
			WastedHours:     2,
			OverallScore:    75,
			Detail:          schema.AnalysisDetail{GoodPoints: []string{"上午专注"}},
		},
	}
	svc, records := newAnalysisService(t, analyzer)
	ctx := context.Background()

	if err := records.Create(ctx, &schema.DailyRecord{Date: "2026-02-16", RawInput: "写了一天代码"}); err != nil {
		t.Fatalf("Create record error: %v", err)
	}

	got, err := svc.Generate(ctx, "2026-02-16")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if got.Date != "2026-02-16" || got.OverallScore != 75 {
		t.Fatalf("got=%+v", got)
	}

	// 重复生成幂等覆盖
	analyzer.daily.OverallScore = 80
	got, err = svc.Generate(ctx, "2026-02-16")
	if err != nil {
		t.Fatalf("重复生成 error: %v", err)
	}
	if got.OverallScore != 80 {
		t.Fatalf("重复生成应覆盖: score=%d", got.OverallScore)
	}
	stored, err := svc.Get(ctx, "2026-02-16")
	if err != nil || stored.OverallScore != 80 {
		t.Fatalf("stored=%+v err=%v", stored, err)
	}

	// 记录不存在
	if _, err := svc.Generate(ctx, "2026-02-17"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err=%v, want ErrRecordNotFound", err)
	}
}

func TestAnalysisServiceGenerateUnconfigured(t *testing.T) {
	analyzer := &stubAnalyzer{dailyErr: ai.ErrAIUnconfigured}
	svc, records := newAnalysisService(t, analyzer)
	ctx := context.Background()

	if err := records.Create(ctx, &schema.DailyRecord{Date: "2026-02-16"}); err != nil {
		t.Fatalf("Create record error: %v", err)
	}
	if _, err := svc.Generate(ctx, "2026-02-16"); !errors.Is(err, ai.ErrAIUnconfigured) {
		t.Fatalf("err=%v, want ErrAIUnconfigured", err)
	}
}

func TestAnalysisServiceGetMissing(t *testing.T) {
	svc, _ := newAnalysisService(t, &stubAnalyzer{})
	if _, err := svc.Get(context.Background(), "2026-02-16"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err=%v, want ErrRecordNotFound", err)
	}
}
