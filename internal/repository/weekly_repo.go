package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/DayMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WeeklyRepository 周次分析仓储
type WeeklyRepository struct {
	db *gorm.DB
}

// NewWeeklyRepository 创建仓储
func NewWeeklyRepository(db *gorm.DB) *WeeklyRepository {
	return &WeeklyRepository{db: db}
}

// Upsert 插入或覆盖（重新生成时按周 ID 覆盖）
func (r *WeeklyRepository) Upsert(ctx context.Context, weekly *schema.WeeklyAnalysis) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "week_id"}},
		UpdateAll: true,
	}).Create(weekly).Error
}

// GetByWeekID 按周 ID 获取，未找到时返回 nil
func (r *WeeklyRepository) GetByWeekID(ctx context.Context, weekID string) (*schema.WeeklyAnalysis, error) {
	var weekly schema.WeeklyAnalysis
	err := r.db.WithContext(ctx).Where("week_id = ?", weekID).First(&weekly).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询周次分析失败: %w", err)
	}
	return &weekly, nil
}

// List 获取周次分析列表（按周起始日期倒序）
func (r *WeeklyRepository) List(ctx context.Context, limit int) ([]schema.WeeklyAnalysis, error) {
	var weeklies []schema.WeeklyAnalysis
	err := r.db.WithContext(ctx).
		Order("week_start DESC").
		Limit(limit).
		Find(&weeklies).Error
	if err != nil {
		return nil, fmt.Errorf("查询周次分析列表失败: %w", err)
	}
	return weeklies, nil
}
