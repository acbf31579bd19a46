package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/yuqie6/DayMirror/internal/schema"
)

func TestFormatScreenTime(t *testing.T) {
	if got := formatScreenTime(schema.ScreenTime{}); got != "无数据" {
		t.Fatalf("零值应格式化为无数据: %q", got)
	}

	st := schema.ScreenTime{
		Apps: []schema.ScreenTimeApp{
			{Name: "YouTube", DurationMinutes: 95},
		},
		TotalMinutes: 150,
	}
	got := formatScreenTime(st)
	if !strings.Contains(got, "总屏幕时间: 2小时30分") {
		t.Fatalf("总时长格式错误: %q", got)
	}
	if !strings.Contains(got, "YouTube: 1小时35分") {
		t.Fatalf("应用时长格式错误: %q", got)
	}
}

func TestFormatPastDataCapsAtSeven(t *testing.T) {
	var records []schema.DailyRecord
	for _, d := range []string{"01", "02", "03", "04", "05", "06", "07", "08", "09"} {
		records = append(records, schema.DailyRecord{Date: "2026-02-" + d})
	}
	got := formatPastData(records, nil)
	lines := strings.Split(got, "\n")
	if len(lines) != 7 {
		t.Fatalf("历史数据应截取最近 7 条, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "2026-02-03") {
		t.Fatalf("应丢弃最早的条目: %q", lines[0])
	}
	if !strings.Contains(lines[0], "无分析数据") {
		t.Fatalf("缺分析的日期应标注: %q", lines[0])
	}
}

func TestBuildDailyAnalysisPrompt(t *testing.T) {
	record := &schema.DailyRecord{
		Date:         "2026-02-16",
		RawInput:     "8点起床，上午写代码",
		TasksPlanned: schema.JSONArray{"写周报"},
	}
	prompt := BuildDailyAnalysisPrompt(record, nil, nil, nil)

	if !strings.Contains(prompt, "2026-02-16") || !strings.Contains(prompt, "8点起床") {
		t.Fatalf("提示词缺少记录内容:\n%s", prompt)
	}
	if !strings.Contains(prompt, "### 完成任务\n无") {
		t.Fatalf("空任务列表应显示为无:\n%s", prompt)
	}
	if strings.Contains(prompt, "屏幕时间") || strings.Contains(prompt, "历史数据") {
		t.Fatalf("无屏幕时间/历史数据时不应出现对应段落:\n%s", prompt)
	}

	// 带历史与记忆时段落出现
	past := []schema.DailyRecord{{Date: "2026-02-15"}}
	prompt = BuildDailyAnalysisPrompt(record, past, nil, []string{"上周三也熬夜了"})
	if !strings.Contains(prompt, "## 历史数据") || !strings.Contains(prompt, "上周三也熬夜了") {
		t.Fatalf("历史与记忆段落缺失:\n%s", prompt)
	}
}

func TestBuildDailyAnalysisPromptScreenTimeNeedsApps(t *testing.T) {
	record := &schema.DailyRecord{
		Date:       "2026-02-16",
		RawInput:   "写代码",
		ScreenTime: schema.ScreenTime{TotalMinutes: 120, Apps: []schema.ScreenTimeApp{}},
	}
	prompt := BuildDailyAnalysisPrompt(record, nil, nil, nil)
	if strings.Contains(prompt, "屏幕时间") {
		t.Fatalf("没有应用明细时不应出现屏幕时间段落:\n%s", prompt)
	}

	record.ScreenTime.Apps = []schema.ScreenTimeApp{{Name: "Chrome", DurationMinutes: 120}}
	prompt = BuildDailyAnalysisPrompt(record, nil, nil, nil)
	if !strings.Contains(prompt, "### 屏幕时间") || !strings.Contains(prompt, "Chrome: 2小时0分") {
		t.Fatalf("有应用明细时应出现屏幕时间段落:\n%s", prompt)
	}
}

func TestBuildWeeklyAnalysisPrompt(t *testing.T) {
	records := []schema.DailyRecord{
		{Date: "2026-02-17", ScreenTime: schema.ScreenTime{
			Apps: []schema.ScreenTimeApp{{Name: "YouTube", DurationMinutes: 60}},
		}},
		{Date: "2026-02-16", RawInput: "只有记录没有分析", ScreenTime: schema.ScreenTime{
			Apps: []schema.ScreenTimeApp{{Name: "YouTube", DurationMinutes: 30}, {Name: "WeChat", DurationMinutes: 20}},
		}},
	}
	analyses := []schema.DailyAnalysis{
		{
			Date: "2026-02-17", OverallScore: 75, TaskCompletionRate: 0.5,
			Detail: schema.AnalysisDetail{BadPoints: []string{"熬夜", "刷视频", "午饭拖太久"}},
		},
	}
	lastWeek := &schema.WeeklyAnalysis{
		AvgOverallScore: 60,
		ScoreTrend:      schema.TrendStable,
		Deep: schema.DeepAnalysis{
			ImprovementPlan: schema.ImprovementPlan{NextWeekGoals: []string{"早睡"}},
		},
	}

	prompt := BuildWeeklyAnalysisPrompt("2026-W08", records, analyses, lastWeek)

	// 日期升序
	i16 := strings.Index(prompt, "2026-02-16")
	i17 := strings.Index(prompt, "2026-02-17")
	if i16 == -1 || i17 == -1 || i16 > i17 {
		t.Fatalf("每日概要应按日期升序:\n%s", prompt)
	}
	if !strings.Contains(prompt, "无分析（行为记录: 只有记录没有分析") {
		t.Fatalf("缺分析的日期应带原始记录摘要:\n%s", prompt)
	}
	// 问题点最多 2 条
	if strings.Contains(prompt, "午饭拖太久") {
		t.Fatalf("问题点应截取前 2 条:\n%s", prompt)
	}
	// 应用聚合按时长倒序
	iYT := strings.Index(prompt, "- YouTube: 1小时30分")
	iWX := strings.Index(prompt, "- WeChat: 0小时20分")
	if iYT == -1 || iWX == -1 || iYT > iWX {
		t.Fatalf("应用聚合应按总时长倒序:\n%s", prompt)
	}
	if !strings.Contains(prompt, "### 上周（参考）") || !strings.Contains(prompt, "早睡") {
		t.Fatalf("上周对比段落缺失:\n%s", prompt)
	}
}

func TestBuildWeeklyAnalysisPromptTruncatesOnRuneBoundary(t *testing.T) {
	records := []schema.DailyRecord{
		{Date: "2026-02-16", RawInput: strings.Repeat("起", 150)},
	}
	prompt := BuildWeeklyAnalysisPrompt("2026-W08", records, nil, nil)
	if !utf8.ValidString(prompt) {
		t.Fatalf("截断破坏了 UTF-8 编码:\n%q", prompt)
	}
	if !strings.Contains(prompt, strings.Repeat("起", 100)+"...") {
		t.Fatalf("摘要应截取前 100 个字符:\n%s", prompt)
	}
	if strings.Contains(prompt, strings.Repeat("起", 101)) {
		t.Fatalf("摘要超过 100 个字符:\n%s", prompt)
	}
}
