package schema

import "time"

// SchemaMeta 数据库结构版本标记（单行表，ID 恒为 1）
type SchemaMeta struct {
	ID            int64     `gorm:"primaryKey"`
	SchemaVersion int       `gorm:"default:0"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (SchemaMeta) TableName() string {
	return "schema_meta"
}
