package schema

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// 行为分类的固定集合（AI 结构化时使用）
const (
	CategoryLife     = "生活"
	CategoryWork     = "工作"
	CategoryStudy    = "学习"
	CategoryLeisure  = "娱乐"
	CategoryWasted   = "浪费时间"
	CategoryExercise = "运动"
)

// Activity 一条结构化的行为记录（AI 从原始文本解析而来）
type Activity struct {
	StartTime    string `json:"start_time"`         // "08:00"
	EndTime      string `json:"end_time,omitempty"` // "09:00"，可为空
	Activity     string `json:"activity"`           // 行为的简短描述
	Category     string `json:"category"`           // 生活|工作|学习|娱乐|浪费时间|运动
	IsProductive bool   `json:"is_productive"`
}

// ActivityList 以 JSON 文本存储的行为列表
type ActivityList []Activity

// Value 实现 driver.Valuer 接口
func (l ActivityList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *ActivityList) Scan(value interface{}) error {
	bytes, ok := scanBytes(value)
	if !ok {
		*l = make(ActivityList, 0)
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// ScreenTimeApp 单个应用的使用时长
type ScreenTimeApp struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
}

// ScreenTime 一天的屏幕时间数据（从截图 OCR 提取）
// 零值表示尚未上传截图。
type ScreenTime struct {
	RawImageURL          string          `json:"raw_image_url,omitempty"` // 原始截图的存储定位符
	Apps                 []ScreenTimeApp `json:"apps"`
	TotalMinutes         int             `json:"total_screen_time_minutes"`
	ExtractionConfidence string          `json:"extraction_confidence,omitempty"` // high|medium|low
}

// Present 是否已有屏幕时间数据
func (s ScreenTime) Present() bool {
	return len(s.Apps) > 0 || s.TotalMinutes > 0 || s.RawImageURL != ""
}

// Value 实现 driver.Valuer 接口，零值存为 NULL
func (s ScreenTime) Value() (driver.Value, error) {
	if !s.Present() {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *ScreenTime) Scan(value interface{}) error {
	bytes, ok := scanBytes(value)
	if !ok {
		*s = ScreenTime{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// DailyRecord 一天的行为记录
// 以日期为唯一键：每天只有一条记录。
type DailyRecord struct {
	ID             int64        `gorm:"primaryKey;autoIncrement" json:"-"`
	Date           string       `gorm:"size:10;uniqueIndex" json:"date"` // YYYY-MM-DD
	RawInput       string       `gorm:"type:text" json:"raw_input"`      // 用户输入的原始文本
	Activities     ActivityList `gorm:"type:text" json:"parsed_activities"`
	ScreenTime     ScreenTime   `gorm:"type:text" json:"screen_time"`
	TasksPlanned   JSONArray    `gorm:"type:text" json:"tasks_planned"`
	TasksCompleted JSONArray    `gorm:"type:text" json:"tasks_completed"`
	CompletionRate float64      `gorm:"default:0" json:"completion_rate"` // 总是由服务端重算
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DailyRecord) TableName() string {
	return "daily_records"
}

// RecomputeCompletionRate 重算任务完成率
// 完成率永远不信任客户端，planned 为空时为 0（避免除零）。
func (r *DailyRecord) RecomputeCompletionRate() {
	if len(r.TasksPlanned) == 0 {
		r.CompletionRate = 0
		return
	}
	r.CompletionRate = float64(len(r.TasksCompleted)) / float64(len(r.TasksPlanned))
}
