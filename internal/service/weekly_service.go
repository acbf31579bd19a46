package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/yuqie6/DayMirror/internal/ai"
	"github.com/yuqie6/DayMirror/internal/eventbus"
	"github.com/yuqie6/DayMirror/internal/pkg/isoweek"
	"github.com/yuqie6/DayMirror/internal/schema"
)

// 平均分波动在此范围内视为持平
const trendThreshold = 2

// WeeklyService 周次分析服务
// 汇总数字由日次分析重算，模型只负责深度叙述部分。
type WeeklyService struct {
	records  RecordStore
	analyses AnalysisStore
	weeklies WeeklyStore
	analyzer Analyzer
	hub      *eventbus.Hub
}

// NewWeeklyService 创建周次分析服务
func NewWeeklyService(records RecordStore, analyses AnalysisStore, weeklies WeeklyStore, analyzer Analyzer, hub *eventbus.Hub) *WeeklyService {
	return &WeeklyService{
		records:  records,
		analyses: analyses,
		weeklies: weeklies,
		analyzer: analyzer,
		hub:      hub,
	}
}

// Generate 生成一个 ISO 周的分析并覆盖写入
// 该周没有任何记录时返回 ErrWeekEmpty。
func (s *WeeklyService) Generate(ctx context.Context, weekID string) (*schema.WeeklyAnalysis, error) {
	start, end, err := isoweek.RangeDates(weekID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeekID, err)
	}

	records, err := s.records.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrWeekEmpty, weekID)
	}

	analyses, err := s.analyses.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("查询日次分析失败: %w", err)
	}

	var lastWeek *schema.WeeklyAnalysis
	if prevID, prevErr := isoweek.Previous(weekID); prevErr == nil {
		lastWeek, err = s.weeklies.GetByWeekID(ctx, prevID)
		if err != nil {
			return nil, fmt.Errorf("查询上周分析失败: %w", err)
		}
	}

	result, err := s.analyzer.GenerateWeeklyAnalysis(ctx, weekID, records, analyses, lastWeek)
	if err != nil {
		return nil, err
	}

	weekly := &schema.WeeklyAnalysis{
		WeekID:    weekID,
		WeekStart: start,
		WeekEnd:   end,
		Deep:      result.DeepAnalysis,
	}
	summarize(weekly, analyses, result, lastWeek)

	if err := s.weeklies.Upsert(ctx, weekly); err != nil {
		return nil, fmt.Errorf("写入周次分析失败: %w", err)
	}

	slog.Info("生成周次分析", "week_id", weekID, "days", len(records), "avg_score", weekly.AvgOverallScore, "trend", weekly.ScoreTrend)
	s.hub.Publish(eventbus.Event{Type: eventbus.EventWeeklyGenerated, Data: map[string]any{"week_id": weekID, "avg_score": weekly.AvgOverallScore}})
	return weekly, nil
}

// summarize 按日次分析重算汇总数字与评分趋势
// 整周都没有日次分析时无从重算，退回模型给出的汇总数字，趋势仍由服务端判定。
func summarize(weekly *schema.WeeklyAnalysis, analyses []schema.DailyAnalysis, model *ai.WeeklyAnalysisResult, lastWeek *schema.WeeklyAnalysis) {
	if len(analyses) == 0 {
		weekly.AvgProductiveHours = model.WeeklySummary.AvgProductiveHours
		weekly.AvgWastedHours = model.WeeklySummary.AvgWastedHours
		weekly.AvgTaskCompletionRate = model.WeeklySummary.AvgTaskCompletionRate
		weekly.TotalYoutubeHours = model.WeeklySummary.TotalYoutubeHours
		weekly.AvgOverallScore = model.WeeklySummary.AvgOverallScore
	} else {
		var productive, wasted, rate, youtube float64
		var score int
		for _, a := range analyses {
			productive += a.ProductiveHours
			wasted += a.WastedHours
			rate += a.TaskCompletionRate
			youtube += a.YoutubeHours
			score += a.OverallScore
		}
		n := float64(len(analyses))
		weekly.AvgProductiveHours = math.Round(productive/n*10) / 10
		weekly.AvgWastedHours = math.Round(wasted/n*10) / 10
		weekly.AvgTaskCompletionRate = math.Round(rate/n*100) / 100
		weekly.TotalYoutubeHours = math.Round(youtube*10) / 10
		weekly.AvgOverallScore = int(math.Round(float64(score) / n))
	}

	weekly.ScoreTrend = schema.TrendStable
	if lastWeek != nil {
		switch diff := weekly.AvgOverallScore - lastWeek.AvgOverallScore; {
		case diff > trendThreshold:
			weekly.ScoreTrend = schema.TrendImproving
		case diff < -trendThreshold:
			weekly.ScoreTrend = schema.TrendDeclining
		}
	}
}

// Get 查询一个周的分析
func (s *WeeklyService) Get(ctx context.Context, weekID string) (*schema.WeeklyAnalysis, error) {
	if _, _, err := isoweek.ParseID(weekID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeekID, err)
	}
	weekly, err := s.weeklies.GetByWeekID(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("查询周次分析失败: %w", err)
	}
	if weekly == nil {
		return nil, fmt.Errorf("%w: %s", ErrWeeklyNotFound, weekID)
	}
	return weekly, nil
}

// GetForDate 查询某个日期所在周的分析
func (s *WeeklyService) GetForDate(ctx context.Context, date string) (*schema.WeeklyAnalysis, error) {
	weekID, err := isoweek.FromDateString(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return s.Get(ctx, weekID)
}

// List 按周起始倒序列出周次分析
func (s *WeeklyService) List(ctx context.Context, limit int) ([]schema.WeeklyAnalysis, error) {
	if limit <= 0 || limit > 52 {
		limit = 12
	}
	return s.weeklies.List(ctx, limit)
}
