package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yuqie6/DayMirror/internal/eventbus"
	"github.com/yuqie6/DayMirror/internal/schema"
)

// 日次分析的历史回看窗口（天）
const pastLookbackDays = 7

// AnalysisService 日次分析服务
type AnalysisService struct {
	records  RecordStore
	analyses AnalysisStore
	analyzer Analyzer
	memory   MemoryIndexer
	hub      *eventbus.Hub
}

// NewAnalysisService 创建日次分析服务
func NewAnalysisService(records RecordStore, analyses AnalysisStore, analyzer Analyzer, memory MemoryIndexer, hub *eventbus.Hub) *AnalysisService {
	return &AnalysisService{
		records:  records,
		analyses: analyses,
		analyzer: analyzer,
		memory:   memory,
		hub:      hub,
	}
}

// Generate 生成一天的分析并覆盖写入
// 记录不存在返回 ErrRecordNotFound，分析结果同日期幂等覆盖。
func (s *AnalysisService) Generate(ctx context.Context, date string) (*schema.DailyAnalysis, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	record, err := s.records.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, date)
	}

	pastRecords, err := s.records.GetPast(ctx, date, pastLookbackDays)
	if err != nil {
		return nil, fmt.Errorf("查询历史记录失败: %w", err)
	}
	pastAnalyses, err := s.analyses.GetPast(ctx, date, pastLookbackDays)
	if err != nil {
		return nil, fmt.Errorf("查询历史分析失败: %w", err)
	}

	// 长期记忆检索失败不阻塞分析
	var memories []string
	if s.memory != nil && record.RawInput != "" {
		results, memErr := s.memory.Query(ctx, record.RawInput, 3)
		if memErr != nil {
			slog.Warn("记忆检索失败", "date", date, "error", memErr)
		} else {
			for _, r := range results {
				memories = append(memories, r.Content)
			}
		}
	}

	analysis, err := s.analyzer.GenerateDailyAnalysis(ctx, record, pastRecords, pastAnalyses, memories)
	if err != nil {
		return nil, err
	}

	if err := s.analyses.Upsert(ctx, analysis); err != nil {
		return nil, fmt.Errorf("写入分析失败: %w", err)
	}

	if s.memory != nil {
		if err := s.memory.IndexDailyAnalysis(ctx, analysis); err != nil {
			slog.Warn("分析索引失败", "date", date, "error", err)
		}
	}

	slog.Info("生成日次分析", "date", date, "score", analysis.OverallScore)
	s.hub.Publish(eventbus.Event{Type: eventbus.EventAnalysisGenerated, Data: map[string]any{"date": date, "score": analysis.OverallScore}})
	return analysis, nil
}

// Get 查询一天的分析
func (s *AnalysisService) Get(ctx context.Context, date string) (*schema.DailyAnalysis, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	analysis, err := s.analyses.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("查询分析失败: %w", err)
	}
	if analysis == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, date)
	}
	return analysis, nil
}

// GetRange 查询一段日期范围内的分析（升序）
func (s *AnalysisService) GetRange(ctx context.Context, start, end string) ([]schema.DailyAnalysis, error) {
	if err := validateDate(start); err != nil {
		return nil, err
	}
	if err := validateDate(end); err != nil {
		return nil, err
	}
	return s.analyses.GetByDateRange(ctx, start, end)
}
