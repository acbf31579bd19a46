package schema

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// 分数趋势枚举
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// TimeWaster 时间黑洞条目
type TimeWaster struct {
	Activity   string  `json:"activity"`
	TotalHours float64 `json:"total_hours"`
	Trigger    string  `json:"trigger"` // 触发场景
}

// ImprovementPlan 下周改进计划
type ImprovementPlan struct {
	NextWeekGoals   []string `json:"next_week_goals"` // 提示词约束最多 3 个
	ConcreteActions []string `json:"concrete_actions"`
	HabitBuilding   []string `json:"habit_building"`
}

// ProgressVsLastWeek 与上周的进展对比
type ProgressVsLastWeek struct {
	Improved  []string `json:"improved"`
	Declined  []string `json:"declined"`
	Unchanged []string `json:"unchanged"`
}

// DeepAnalysis 周次分析的深度内容
type DeepAnalysis struct {
	WeeklyPattern      string             `json:"weekly_pattern"`
	BiggestTimeWasters []TimeWaster       `json:"biggest_time_wasters"`
	CognitivePatterns  []string           `json:"cognitive_patterns"`
	ImprovementPlan    ImprovementPlan    `json:"improvement_plan"`
	ProgressVsLastWeek ProgressVsLastWeek `json:"progress_vs_last_week"`
}

// Normalize 把所有 nil 列表填成空列表
func (d *DeepAnalysis) Normalize() {
	if d.BiggestTimeWasters == nil {
		d.BiggestTimeWasters = []TimeWaster{}
	}
	if d.CognitivePatterns == nil {
		d.CognitivePatterns = []string{}
	}
	if d.ImprovementPlan.NextWeekGoals == nil {
		d.ImprovementPlan.NextWeekGoals = []string{}
	}
	if d.ImprovementPlan.ConcreteActions == nil {
		d.ImprovementPlan.ConcreteActions = []string{}
	}
	if d.ImprovementPlan.HabitBuilding == nil {
		d.ImprovementPlan.HabitBuilding = []string{}
	}
	if d.ProgressVsLastWeek.Improved == nil {
		d.ProgressVsLastWeek.Improved = []string{}
	}
	if d.ProgressVsLastWeek.Declined == nil {
		d.ProgressVsLastWeek.Declined = []string{}
	}
	if d.ProgressVsLastWeek.Unchanged == nil {
		d.ProgressVsLastWeek.Unchanged = []string{}
	}
}

// Value 实现 driver.Valuer 接口
func (d DeepAnalysis) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan 实现 sql.Scanner 接口
func (d *DeepAnalysis) Scan(value interface{}) error {
	bytes, ok := scanBytes(value)
	if !ok {
		*d = DeepAnalysis{}
		d.Normalize()
		return nil
	}
	if err := json.Unmarshal(bytes, d); err != nil {
		return err
	}
	d.Normalize()
	return nil
}

// WeeklyAnalysis 一个 ISO 周的聚合分析
// 以周 ID（YYYY-Www）为唯一键，由生成操作创建或覆盖。
type WeeklyAnalysis struct {
	ID                    int64        `gorm:"primaryKey;autoIncrement" json:"-"`
	WeekID                string       `gorm:"size:8;uniqueIndex" json:"week_id"` // 2026-W08
	WeekStart             string       `gorm:"size:10;index" json:"week_start"`   // ISO 周一
	WeekEnd               string       `gorm:"size:10" json:"week_end"`           // ISO 周日
	AvgProductiveHours    float64      `gorm:"default:0" json:"avg_productive_hours"`
	AvgWastedHours        float64      `gorm:"default:0" json:"avg_wasted_hours"`
	AvgTaskCompletionRate float64      `gorm:"default:0" json:"avg_task_completion_rate"`
	TotalYoutubeHours     float64      `gorm:"default:0" json:"total_youtube_hours"`
	AvgOverallScore       int          `gorm:"default:0" json:"avg_overall_score"`
	ScoreTrend            string       `gorm:"size:16" json:"score_trend"` // improving|declining|stable
	Deep                  DeepAnalysis `gorm:"type:text" json:"deep_analysis"`
	CreatedAt             time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (WeeklyAnalysis) TableName() string {
	return "weekly_analyses"
}
