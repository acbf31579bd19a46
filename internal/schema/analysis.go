package schema

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ImprovementSuggestion 改进建议
type ImprovementSuggestion struct {
	Suggestion string `json:"suggestion"`
	Priority   string `json:"priority"` // high|medium|low
	Category   string `json:"category"` // 任务管理|环境设计|习惯养成|心态|其他
}

// ComparisonWithPast 与过去数据的比较
type ComparisonWithPast struct {
	RecurringPatterns        []string `json:"recurring_patterns"`
	ImprovementsFromLastWeek []string `json:"improvements_from_last_week"`
}

// AnalysisDetail 日次分析的详细内容（AI 生成的叙述部分）
type AnalysisDetail struct {
	GoodPoints             []string                `json:"good_points"`
	BadPoints              []string                `json:"bad_points"`
	RootCauses             []string                `json:"root_causes"`
	ThinkingWeaknesses     []string                `json:"thinking_weaknesses"`
	BehaviorWeaknesses     []string                `json:"behavior_weaknesses"`
	ImprovementSuggestions []ImprovementSuggestion `json:"improvement_suggestions"`
	ComparisonWithPast     ComparisonWithPast      `json:"comparison_with_past"`
}

// Normalize 把所有 nil 列表填成空列表，读取侧永远不出现 null
func (d *AnalysisDetail) Normalize() {
	if d.GoodPoints == nil {
		d.GoodPoints = []string{}
	}
	if d.BadPoints == nil {
		d.BadPoints = []string{}
	}
	if d.RootCauses == nil {
		d.RootCauses = []string{}
	}
	if d.ThinkingWeaknesses == nil {
		d.ThinkingWeaknesses = []string{}
	}
	if d.BehaviorWeaknesses == nil {
		d.BehaviorWeaknesses = []string{}
	}
	if d.ImprovementSuggestions == nil {
		d.ImprovementSuggestions = []ImprovementSuggestion{}
	}
	if d.ComparisonWithPast.RecurringPatterns == nil {
		d.ComparisonWithPast.RecurringPatterns = []string{}
	}
	if d.ComparisonWithPast.ImprovementsFromLastWeek == nil {
		d.ComparisonWithPast.ImprovementsFromLastWeek = []string{}
	}
}

// Value 实现 driver.Valuer 接口
func (d AnalysisDetail) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan 实现 sql.Scanner 接口
func (d *AnalysisDetail) Scan(value interface{}) error {
	bytes, ok := scanBytes(value)
	if !ok {
		*d = AnalysisDetail{}
		d.Normalize()
		return nil
	}
	if err := json.Unmarshal(bytes, d); err != nil {
		return err
	}
	d.Normalize()
	return nil
}

// DailyAnalysis 一天的 AI 分析结果
// 与 DailyRecord 同日期 1:1，按需生成，可能不存在。
type DailyAnalysis struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement" json:"-"`
	Date               string         `gorm:"size:10;uniqueIndex" json:"date"`
	ProductiveHours    float64        `gorm:"default:0" json:"productive_hours"`
	WastedHours        float64        `gorm:"default:0" json:"wasted_hours"`
	YoutubeHours       float64        `gorm:"default:0" json:"youtube_hours"` // 视频类应用时长
	TaskCompletionRate float64        `gorm:"default:0" json:"task_completion_rate"`
	OverallScore       int            `gorm:"default:0" json:"overall_score"` // 0-100
	Detail             AnalysisDetail `gorm:"type:text" json:"analysis"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DailyAnalysis) TableName() string {
	return "daily_analyses"
}
