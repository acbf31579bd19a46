package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/DayMirror/internal/pkg/isoweek"
	"github.com/yuqie6/DayMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalysisRepository 日次分析仓储
type AnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository 创建仓储
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Upsert 插入或覆盖（重新生成时按日期覆盖）
func (r *AnalysisRepository) Upsert(ctx context.Context, analysis *schema.DailyAnalysis) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(analysis).Error
}

// GetByDate 按日期获取，未找到时返回 nil
func (r *AnalysisRepository) GetByDate(ctx context.Context, date string) (*schema.DailyAnalysis, error) {
	var analysis schema.DailyAnalysis
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询分析失败: %w", err)
	}
	return &analysis, nil
}

// GetByDateRange 获取日期范围内的分析（升序）
func (r *AnalysisRepository) GetByDateRange(ctx context.Context, startDate, endDate string) ([]schema.DailyAnalysis, error) {
	var analyses []schema.DailyAnalysis
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date ASC").
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("查询日期范围分析失败: %w", err)
	}
	return analyses, nil
}

// GetPast 获取指定日期之前 N 天的分析（不含当天，升序）
func (r *AnalysisRepository) GetPast(ctx context.Context, date string, days int) ([]schema.DailyAnalysis, error) {
	t, err := time.ParseInLocation(isoweek.DateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("日期格式无效: %q", date)
	}
	start := t.AddDate(0, 0, -days).Format(isoweek.DateLayout)
	end := t.AddDate(0, 0, -1).Format(isoweek.DateLayout)
	return r.GetByDateRange(ctx, start, end)
}
