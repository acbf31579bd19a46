package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/DayMirror/internal/schema"
	"github.com/yuqie6/DayMirror/internal/testutil"
)

func TestWeeklyRepositoryUpsertOverwrite(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewWeeklyRepository(db)
	ctx := context.Background()

	weekly := &schema.WeeklyAnalysis{
		WeekID:          "2026-W08",
		WeekStart:       "2026-02-16",
		WeekEnd:         "2026-02-22",
		AvgOverallScore: 60,
		ScoreTrend:      schema.TrendStable,
	}
	if err := repo.Upsert(ctx, weekly); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	// 重新生成时覆盖
	weekly2 := &schema.WeeklyAnalysis{
		WeekID:          "2026-W08",
		WeekStart:       "2026-02-16",
		WeekEnd:         "2026-02-22",
		AvgOverallScore: 72,
		ScoreTrend:      schema.TrendImproving,
		Deep: schema.DeepAnalysis{
			WeeklyPattern: "周中效率下滑",
		},
	}
	if err := repo.Upsert(ctx, weekly2); err != nil {
		t.Fatalf("Upsert overwrite error: %v", err)
	}

	got, err := repo.GetByWeekID(ctx, "2026-W08")
	if err != nil {
		t.Fatalf("GetByWeekID error: %v", err)
	}
	if got == nil || got.AvgOverallScore != 72 || got.ScoreTrend != schema.TrendImproving {
		t.Fatalf("got=%+v, want score 72 improving", got)
	}
	// JSON 列读出后 nil 列表被规整为空列表
	if got.Deep.CognitivePatterns == nil || got.Deep.ImprovementPlan.NextWeekGoals == nil {
		t.Fatal("Deep 的列表字段不应为 nil")
	}

	missing, err := repo.GetByWeekID(ctx, "2026-W09")
	if err != nil {
		t.Fatalf("GetByWeekID error: %v", err)
	}
	if missing != nil {
		t.Fatalf("不存在的周应返回 nil, got %+v", missing)
	}
}

func TestWeeklyRepositoryList(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewWeeklyRepository(db)
	ctx := context.Background()

	for _, w := range []struct{ id, start string }{
		{"2026-W07", "2026-02-09"},
		{"2026-W08", "2026-02-16"},
		{"2026-W06", "2026-02-02"},
	} {
		if err := repo.Upsert(ctx, &schema.WeeklyAnalysis{WeekID: w.id, WeekStart: w.start}); err != nil {
			t.Fatalf("Upsert(%s) error: %v", w.id, err)
		}
	}

	got, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].WeekID != "2026-W08" || got[1].WeekID != "2026-W07" {
		t.Fatalf("List 应按周起始倒序取前 2: %+v", got)
	}
}
