package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yuqie6/DayMirror/internal/pkg/isoweek"
)

// Scheduler 周报定时生成器
// 每周一早晨自动生成上一个 ISO 周的报告，空周跳过不报错。
type Scheduler struct {
	cron    *cron.Cron
	weekly  *WeeklyService
	timeout time.Duration
}

// SchedulerConfig 配置
type SchedulerConfig struct {
	Spec     string // cron 表达式，默认周一 00:05
	Timezone string // IANA 时区名，默认 Local
}

// NewScheduler 创建调度器
func NewScheduler(weekly *WeeklyService, cfg *SchedulerConfig) (*Scheduler, error) {
	if cfg == nil {
		cfg = &SchedulerConfig{}
	}
	if cfg.Spec == "" {
		cfg.Spec = "5 0 * * 1"
	}

	loc := time.Local
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("加载时区失败: %w", err)
		}
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		weekly:  weekly,
		timeout: 5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(cfg.Spec, s.generateLastWeek); err != nil {
		return nil, fmt.Errorf("注册定时任务失败: %w", err)
	}
	return s, nil
}

// generateLastWeek 生成上一个 ISO 周的报告
func (s *Scheduler) generateLastWeek() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	weekID, err := isoweek.Previous(isoweek.FromDate(time.Now()))
	if err != nil {
		slog.Error("计算上周周 ID 失败", "error", err)
		return
	}

	slog.Info("定时生成周报", "week_id", weekID)
	if _, err := s.weekly.Generate(ctx, weekID); err != nil {
		if errors.Is(err, ErrWeekEmpty) {
			slog.Info("上周没有记录，跳过周报", "week_id", weekID)
			return
		}
		slog.Error("定时周报生成失败", "week_id", weekID, "error", err)
	}
}

// Start 启动调度器
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("周报调度器已启动")
}

// Stop 停止调度器并等待进行中的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("周报调度器已停止")
}
