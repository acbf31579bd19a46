package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuqie6/DayMirror/internal/ai"
	"github.com/yuqie6/DayMirror/internal/eventbus"
	"github.com/yuqie6/DayMirror/internal/pkg/isoweek"
	"github.com/yuqie6/DayMirror/internal/schema"
)

// RecordInput 创建/更新记录的输入
type RecordInput struct {
	Date           string   `json:"date"`
	RawInput       string   `json:"raw_input"`
	TasksPlanned   []string `json:"tasks_planned"`
	TasksCompleted []string `json:"tasks_completed"`
}

// RecordService 行为记录服务
// 写入时尽力而为地调用 AI 结构化行为列表，解析失败不阻塞写入。
type RecordService struct {
	records     RecordStore
	analyzer    Analyzer
	screenshots ScreenshotStore
	hub         *eventbus.Hub
}

// NewRecordService 创建记录服务
func NewRecordService(records RecordStore, analyzer Analyzer, screenshots ScreenshotStore, hub *eventbus.Hub) *RecordService {
	return &RecordService{
		records:     records,
		analyzer:    analyzer,
		screenshots: screenshots,
		hub:         hub,
	}
}

func validateDate(date string) error {
	if _, err := time.Parse(isoweek.DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// parseActivities 尽力而为的结构化，任何失败都只记日志
func (s *RecordService) parseActivities(ctx context.Context, date, rawInput string) schema.ActivityList {
	if !s.analyzer.IsConfigured() || rawInput == "" {
		return schema.ActivityList{}
	}

	activities, outcome, err := s.analyzer.ParseActivities(ctx, date, rawInput)
	switch outcome {
	case ai.ParseOK:
		return activities
	case ai.ParseWrongShape:
		slog.Warn("行为解析形状错误，存空列表", "date", date)
	case ai.ParseMalformed:
		slog.Warn("行为解析回复损坏，存空列表", "date", date, "error", err)
	case ai.ParseBackendError:
		slog.Error("行为解析调用失败，存空列表", "date", date, "error", err)
	}
	return schema.ActivityList{}
}

// Create 创建一天的记录，同日期已存在时返回 ErrRecordExists
func (s *RecordService) Create(ctx context.Context, input *RecordInput) (*schema.DailyRecord, error) {
	if err := validateDate(input.Date); err != nil {
		return nil, err
	}

	existing, err := s.records.GetByDate(ctx, input.Date)
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordExists, input.Date)
	}

	record := &schema.DailyRecord{
		Date:           input.Date,
		RawInput:       input.RawInput,
		Activities:     s.parseActivities(ctx, input.Date, input.RawInput),
		TasksPlanned:   schema.JSONArray(input.TasksPlanned),
		TasksCompleted: schema.JSONArray(input.TasksCompleted),
	}
	record.RecomputeCompletionRate()

	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("写入记录失败: %w", err)
	}

	slog.Info("创建记录", "date", record.Date, "activities", len(record.Activities))
	s.hub.Publish(eventbus.Event{Type: eventbus.EventRecordCreated, Data: map[string]any{"date": record.Date}})
	return record, nil
}

// Update 整体更新一天的记录（最后写入者胜），原始文本变化时重新解析
func (s *RecordService) Update(ctx context.Context, input *RecordInput) (*schema.DailyRecord, error) {
	if err := validateDate(input.Date); err != nil {
		return nil, err
	}

	record, err := s.records.GetByDate(ctx, input.Date)
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, input.Date)
	}

	if input.RawInput != record.RawInput {
		record.Activities = s.parseActivities(ctx, input.Date, input.RawInput)
	}
	record.RawInput = input.RawInput
	record.TasksPlanned = schema.JSONArray(input.TasksPlanned)
	record.TasksCompleted = schema.JSONArray(input.TasksCompleted)
	record.RecomputeCompletionRate()

	if err := s.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("更新记录失败: %w", err)
	}

	slog.Info("更新记录", "date", record.Date)
	s.hub.Publish(eventbus.Event{Type: eventbus.EventRecordUpdated, Data: map[string]any{"date": record.Date}})
	return record, nil
}

// Get 查询一天的记录
func (s *RecordService) Get(ctx context.Context, date string) (*schema.DailyRecord, error) {
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
	return record, nil
}

// List 按日期倒序列出记录，start/end 可为空
func (s *RecordService) List(ctx context.Context, start, end string, limit int) ([]schema.DailyRecord, error) {
	if start != "" {
		if err := validateDate(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if err := validateDate(end); err != nil {
			return nil, err
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.records.List(ctx, start, end, limit)
}

// Delete 删除一天的记录
func (s *RecordService) Delete(ctx context.Context, date string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	ok, err := s.records.Delete(ctx, date)
	if err != nil {
		return fmt.Errorf("删除记录失败: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, date)
	}

	slog.Info("删除记录", "date", date)
	s.hub.Publish(eventbus.Event{Type: eventbus.EventRecordDeleted, Data: map[string]any{"date": date}})
	return nil
}

// IngestScreenshot 接收屏幕时间截图：落盘、OCR 提取、只回写 screen_time 列
// 并发的记录更新不会被覆盖。
func (s *RecordService) IngestScreenshot(ctx context.Context, date string, data []byte, mimeType string) (schema.ScreenTime, error) {
	if err := validateDate(date); err != nil {
		return schema.ScreenTime{}, err
	}

	record, err := s.records.GetByDate(ctx, date)
	if err != nil {
		return schema.ScreenTime{}, fmt.Errorf("查询记录失败: %w", err)
	}
	if record == nil {
		return schema.ScreenTime{}, fmt.Errorf("%w: %s", ErrRecordNotFound, date)
	}

	st, err := s.analyzer.ExtractScreenTime(ctx, data, mimeType)
	if err != nil {
		if errors.Is(err, ai.ErrAIUnconfigured) {
			return schema.ScreenTime{}, err
		}
		return schema.ScreenTime{}, fmt.Errorf("截图提取失败: %w", err)
	}

	// 截图落盘失败不致命，提取结果仍然入库
	if s.screenshots != nil {
		if loc, saveErr := s.screenshots.Save(ctx, date, data, mimeType); saveErr != nil {
			slog.Warn("截图保存失败", "date", date, "error", saveErr)
		} else {
			st.RawImageURL = loc
		}
	}

	if err := s.records.UpdateScreenTime(ctx, date, st); err != nil {
		return schema.ScreenTime{}, fmt.Errorf("写入屏幕时间失败: %w", err)
	}

	slog.Info("截图提取完成", "date", date, "apps", len(st.Apps), "total_minutes", st.TotalMinutes, "confidence", st.ExtractionConfidence)
	s.hub.Publish(eventbus.Event{Type: eventbus.EventScreenTimeIngested, Data: map[string]any{"date": date, "total_minutes": st.TotalMinutes}})
	return st, nil
}
