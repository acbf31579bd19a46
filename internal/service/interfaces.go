package service

import (
	"context"

	"github.com/yuqie6/DayMirror/internal/ai"
	"github.com/yuqie6/DayMirror/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

type RecordStore interface {
	Create(ctx context.Context, record *schema.DailyRecord) error
	Save(ctx context.Context, record *schema.DailyRecord) error
	UpdateScreenTime(ctx context.Context, date string, st schema.ScreenTime) error
	GetByDate(ctx context.Context, date string) (*schema.DailyRecord, error)
	GetByDateRange(ctx context.Context, start, end string) ([]schema.DailyRecord, error)
	List(ctx context.Context, start, end string, limit int) ([]schema.DailyRecord, error)
	GetPast(ctx context.Context, date string, days int) ([]schema.DailyRecord, error)
	Delete(ctx context.Context, date string) (bool, error)
}

type AnalysisStore interface {
	Upsert(ctx context.Context, analysis *schema.DailyAnalysis) error
	GetByDate(ctx context.Context, date string) (*schema.DailyAnalysis, error)
	GetByDateRange(ctx context.Context, start, end string) ([]schema.DailyAnalysis, error)
	GetPast(ctx context.Context, date string, days int) ([]schema.DailyAnalysis, error)
}

type WeeklyStore interface {
	Upsert(ctx context.Context, weekly *schema.WeeklyAnalysis) error
	GetByWeekID(ctx context.Context, weekID string) (*schema.WeeklyAnalysis, error)
	List(ctx context.Context, limit int) ([]schema.WeeklyAnalysis, error)
}

type Analyzer interface {
	GenerateDailyAnalysis(ctx context.Context, record *schema.DailyRecord, pastRecords []schema.DailyRecord, pastAnalyses []schema.DailyAnalysis, memories []string) (*schema.DailyAnalysis, error)
	ParseActivities(ctx context.Context, date, rawInput string) ([]schema.Activity, ai.ParseOutcome, error)
	GenerateWeeklyAnalysis(ctx context.Context, weekID string, records []schema.DailyRecord, analyses []schema.DailyAnalysis, lastWeek *schema.WeeklyAnalysis) (*ai.WeeklyAnalysisResult, error)
	ExtractScreenTime(ctx context.Context, imageBytes []byte, mimeType string) (schema.ScreenTime, error)
	IsConfigured() bool
	HasVision() bool
}

type MemoryIndexer interface {
	IndexDailyAnalysis(ctx context.Context, analysis *schema.DailyAnalysis) error
	Query(ctx context.Context, query string, topK int) ([]MemoryResult, error)
}

type ScreenshotStore interface {
	Save(ctx context.Context, date string, data []byte, mimeType string) (string, error)
	Load(ctx context.Context, date string) ([]byte, string, error)
}
