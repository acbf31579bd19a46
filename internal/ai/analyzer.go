package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuqie6/DayMirror/internal/schema"
)

// ErrAIUnconfigured 未配置 API Key 时所有分析操作返回此错误
var ErrAIUnconfigured = errors.New("模型 API 未配置")

// ChatBackend 分析编排层依赖的模型能力
type ChatBackend interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	ChatWithImage(ctx context.Context, systemPrompt, userText string, imageBytes []byte, mimeType string) (string, error)
	IsConfigured() bool
	HasVision() bool
}

// ParseOutcome 行为解析的结果分类
// 解析失败对记录写入永远是非致命的，分类只用于日志与可观测性。
type ParseOutcome string

const (
	ParseOK           ParseOutcome = "ok"            // 正常解析
	ParseWrongShape   ParseOutcome = "wrong_shape"   // 合法 JSON 但顶层不是数组
	ParseMalformed    ParseOutcome = "malformed"     // 回复无法提取为 JSON
	ParseBackendError ParseOutcome = "backend_error" // 模型调用本身失败
)

// dailySummaryPayload 日次分析回复的 summary 段
type dailySummaryPayload struct {
	ProductiveHours    float64 `json:"productive_hours"`
	WastedHours        float64 `json:"wasted_hours"`
	YoutubeHours       float64 `json:"youtube_hours"`
	TaskCompletionRate float64 `json:"task_completion_rate"`
	OverallScore       int     `json:"overall_score"`
}

// dailyAnalysisPayload 日次分析回复的完整形状
type dailyAnalysisPayload struct {
	Summary  dailySummaryPayload   `json:"summary"`
	Analysis schema.AnalysisDetail `json:"analysis"`
}

// WeeklyAnalysisResult 周次分析的模型输出
// 汇总数字由服务端按日次分析重算，模型给出的 summary 仅作参考。
type WeeklyAnalysisResult struct {
	WeeklySummary struct {
		AvgProductiveHours    float64 `json:"avg_productive_hours"`
		AvgWastedHours        float64 `json:"avg_wasted_hours"`
		AvgTaskCompletionRate float64 `json:"avg_task_completion_rate"`
		TotalYoutubeHours     float64 `json:"total_youtube_hours"`
		AvgOverallScore       int     `json:"avg_overall_score"`
		ScoreTrend            string  `json:"score_trend"`
	} `json:"weekly_summary"`
	DeepAnalysis schema.DeepAnalysis `json:"deep_analysis"`
}

// BehaviorAnalyzer 行为分析编排器
// 负责拼装上下文、调用模型、把回复严格转换为类型化结果。
// 不做重试：一次调用失败就把错误交给上层。
type BehaviorAnalyzer struct {
	backend ChatBackend
}

// NewBehaviorAnalyzer 创建分析编排器
func NewBehaviorAnalyzer(backend ChatBackend) *BehaviorAnalyzer {
	return &BehaviorAnalyzer{backend: backend}
}

// IsConfigured 模型是否可用
func (a *BehaviorAnalyzer) IsConfigured() bool {
	return a.backend.IsConfigured()
}

// HasVision 视觉模型是否可用
func (a *BehaviorAnalyzer) HasVision() bool {
	return a.backend.HasVision()
}

// GenerateDailyAnalysis 生成一天的分析
func (a *BehaviorAnalyzer) GenerateDailyAnalysis(ctx context.Context, record *schema.DailyRecord, pastRecords []schema.DailyRecord, pastAnalyses []schema.DailyAnalysis, memories []string) (*schema.DailyAnalysis, error) {
	if !a.backend.IsConfigured() {
		return nil, ErrAIUnconfigured
	}

	userPrompt := BuildDailyAnalysisPrompt(record, pastRecords, pastAnalyses, memories)
	reply, err := a.backend.Chat(ctx, []Message{
		{Role: "system", Content: dailyAnalysisSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("日次分析调用失败: %w", err)
	}

	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("日次分析回复解析失败: %w", err)
	}
	var payload dailyAnalysisPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &MalformedResponseError{Snippet: snippet(reply), Err: err}
	}

	analysis := &schema.DailyAnalysis{
		Date:               record.Date,
		ProductiveHours:    payload.Summary.ProductiveHours,
		WastedHours:        payload.Summary.WastedHours,
		YoutubeHours:       payload.Summary.YoutubeHours,
		TaskCompletionRate: clampRate(payload.Summary.TaskCompletionRate),
		OverallScore:       clampScore(payload.Summary.OverallScore),
		Detail:             payload.Analysis,
	}
	analysis.Detail.Normalize()
	return analysis, nil
}

// ParseActivities 把自由文本的行为记录结构化
// 返回的 ParseOutcome 区分失败原因：顶层形状错误返回空列表且无错误，
// 回复损坏或调用失败才返回错误，调用方据此决定日志级别。
func (a *BehaviorAnalyzer) ParseActivities(ctx context.Context, date, rawInput string) ([]schema.Activity, ParseOutcome, error) {
	if !a.backend.IsConfigured() {
		return nil, ParseBackendError, ErrAIUnconfigured
	}

	reply, err := a.backend.Chat(ctx, []Message{
		{Role: "system", Content: parseActivitiesSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("请结构化以下 %s 的行为记录:\n\n%s", date, rawInput)},
	})
	if err != nil {
		return nil, ParseBackendError, fmt.Errorf("行为解析调用失败: %w", err)
	}

	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, ParseMalformed, err
	}
	if !IsArray(raw) {
		slog.Warn("行为解析回复顶层不是数组", "date", date)
		return []schema.Activity{}, ParseWrongShape, nil
	}

	var activities []schema.Activity
	if err := json.Unmarshal(raw, &activities); err != nil {
		return nil, ParseMalformed, &MalformedResponseError{Snippet: snippet(reply), Err: err}
	}
	if activities == nil {
		activities = []schema.Activity{}
	}
	return activities, ParseOK, nil
}

// GenerateWeeklyAnalysis 生成一个 ISO 周的深度分析
func (a *BehaviorAnalyzer) GenerateWeeklyAnalysis(ctx context.Context, weekID string, records []schema.DailyRecord, analyses []schema.DailyAnalysis, lastWeek *schema.WeeklyAnalysis) (*WeeklyAnalysisResult, error) {
	if !a.backend.IsConfigured() {
		return nil, ErrAIUnconfigured
	}

	userPrompt := BuildWeeklyAnalysisPrompt(weekID, records, analyses, lastWeek)
	reply, err := a.backend.Chat(ctx, []Message{
		{Role: "system", Content: weeklyAnalysisSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("周次分析调用失败: %w", err)
	}

	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("周次分析回复解析失败: %w", err)
	}
	var result WeeklyAnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &MalformedResponseError{Snippet: snippet(reply), Err: err}
	}
	result.WeeklySummary.AvgTaskCompletionRate = clampRate(result.WeeklySummary.AvgTaskCompletionRate)
	result.WeeklySummary.AvgOverallScore = clampScore(result.WeeklySummary.AvgOverallScore)
	result.DeepAnalysis.Normalize()
	return &result, nil
}

// ExtractScreenTime 从截图提取屏幕时间数据
func (a *BehaviorAnalyzer) ExtractScreenTime(ctx context.Context, imageBytes []byte, mimeType string) (schema.ScreenTime, error) {
	if !a.backend.HasVision() {
		return schema.ScreenTime{}, ErrAIUnconfigured
	}

	reply, err := a.backend.ChatWithImage(ctx, ocrSystemPrompt, "请提取这张截图中的屏幕时间数据。", imageBytes, mimeType)
	if err != nil {
		return schema.ScreenTime{}, fmt.Errorf("截图识别调用失败: %w", err)
	}
	return ParseScreenTime(reply)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
