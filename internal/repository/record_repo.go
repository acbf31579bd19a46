package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/DayMirror/internal/pkg/isoweek"
	"github.com/yuqie6/DayMirror/internal/schema"
	"gorm.io/gorm"
)

// RecordRepository 行为记录仓储
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository 创建仓储
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create 创建记录，同日期已存在时返回 gorm 的唯一约束错误
func (r *RecordRepository) Create(ctx context.Context, record *schema.DailyRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Save 保存整条记录
func (r *RecordRepository) Save(ctx context.Context, record *schema.DailyRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// UpdateScreenTime 只更新屏幕时间列
// 截图上传与文本编辑并发时，避免整行覆盖互相踩踏。
func (r *RecordRepository) UpdateScreenTime(ctx context.Context, date string, st schema.ScreenTime) error {
	return r.db.WithContext(ctx).
		Model(&schema.DailyRecord{}).
		Where("date = ?", date).
		Update("screen_time", st).Error
}

// GetByDate 按日期获取，未找到时返回 nil
func (r *RecordRepository) GetByDate(ctx context.Context, date string) (*schema.DailyRecord, error) {
	var record schema.DailyRecord
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	return &record, nil
}

// GetByDateRange 获取日期范围内的记录（升序）
func (r *RecordRepository) GetByDateRange(ctx context.Context, startDate, endDate string) ([]schema.DailyRecord, error) {
	var records []schema.DailyRecord
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询日期范围记录失败: %w", err)
	}
	return records, nil
}

// List 获取记录列表（新的在前），日期范围可选
func (r *RecordRepository) List(ctx context.Context, startDate, endDate string, limit int) ([]schema.DailyRecord, error) {
	q := r.db.WithContext(ctx).Order("date DESC")
	if startDate != "" {
		q = q.Where("date >= ?", startDate)
	}
	if endDate != "" {
		q = q.Where("date <= ?", endDate)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var records []schema.DailyRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询记录列表失败: %w", err)
	}
	return records, nil
}

// GetPast 获取指定日期之前 N 天的记录（不含当天，升序）
func (r *RecordRepository) GetPast(ctx context.Context, date string, days int) ([]schema.DailyRecord, error) {
	t, err := time.ParseInLocation(isoweek.DateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("日期格式无效: %q", date)
	}
	start := t.AddDate(0, 0, -days).Format(isoweek.DateLayout)
	end := t.AddDate(0, 0, -1).Format(isoweek.DateLayout)
	return r.GetByDateRange(ctx, start, end)
}

// Delete 删除记录，返回是否存在
func (r *RecordRepository) Delete(ctx context.Context, date string) (bool, error) {
	res := r.db.WithContext(ctx).Where("date = ?", date).Delete(&schema.DailyRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("删除记录失败: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
