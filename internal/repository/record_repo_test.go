package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/DayMirror/internal/schema"
	"github.com/yuqie6/DayMirror/internal/testutil"
)

func TestRecordRepositoryCreateAndGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	record := &schema.DailyRecord{
		Date:     "2026-02-16",
		RawInput: "8点起床，上午写代码",
		Activities: schema.ActivityList{
			{StartTime: "08:00", EndTime: "09:00", Activity: "起床准备", Category: schema.CategoryLife, IsProductive: true},
		},
		TasksPlanned: schema.JSONArray{"写周报", "跑步"},
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// 同日期重复创建应失败（唯一索引）
	if err := repo.Create(ctx, &schema.DailyRecord{Date: "2026-02-16"}); err == nil {
		t.Fatal("重复日期创建应返回错误")
	}

	got, err := repo.GetByDate(ctx, "2026-02-16")
	if err != nil {
		t.Fatalf("GetByDate error: %v", err)
	}
	if got == nil || got.RawInput != record.RawInput {
		t.Fatalf("got=%+v, want raw_input=%q", got, record.RawInput)
	}
	if len(got.Activities) != 1 || got.Activities[0].Category != schema.CategoryLife {
		t.Fatalf("JSON 列往返失败: %+v", got.Activities)
	}
	if got.ScreenTime.Present() {
		t.Fatal("未上传截图时 ScreenTime 应为零值")
	}

	missing, err := repo.GetByDate(ctx, "2026-02-17")
	if err != nil {
		t.Fatalf("GetByDate error: %v", err)
	}
	if missing != nil {
		t.Fatalf("不存在的日期应返回 nil, got %+v", missing)
	}
}

func TestRecordRepositoryUpdateScreenTime(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &schema.DailyRecord{Date: "2026-02-16", RawInput: "原始文本"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	st := schema.ScreenTime{
		Apps:                 []schema.ScreenTimeApp{{Name: "YouTube", DurationMinutes: 90}},
		TotalMinutes:         90,
		ExtractionConfidence: "high",
	}
	if err := repo.UpdateScreenTime(ctx, "2026-02-16", st); err != nil {
		t.Fatalf("UpdateScreenTime error: %v", err)
	}

	got, err := repo.GetByDate(ctx, "2026-02-16")
	if err != nil {
		t.Fatalf("GetByDate error: %v", err)
	}
	if !got.ScreenTime.Present() || got.ScreenTime.TotalMinutes != 90 {
		t.Fatalf("screen_time=%+v, want total 90", got.ScreenTime)
	}
	// 只更新 screen_time 列，其他字段不受影响
	if got.RawInput != "原始文本" {
		t.Fatalf("raw_input 被覆盖: %q", got.RawInput)
	}
}

func TestRecordRepositoryGetPast(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	for _, date := range []string{"2026-02-10", "2026-02-14", "2026-02-16"} {
		if err := repo.Create(ctx, &schema.DailyRecord{Date: date}); err != nil {
			t.Fatalf("Create(%s) error: %v", date, err)
		}
	}

	// 过去 7 天不含当天
	past, err := repo.GetPast(ctx, "2026-02-16", 7)
	if err != nil {
		t.Fatalf("GetPast error: %v", err)
	}
	if len(past) != 2 {
		t.Fatalf("len(past)=%d, want 2", len(past))
	}
	if past[0].Date != "2026-02-10" || past[1].Date != "2026-02-14" {
		t.Fatalf("past 应按日期升序: %+v", past)
	}
}

func TestRecordRepositoryDelete(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &schema.DailyRecord{Date: "2026-02-16"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	ok, err := repo.Delete(ctx, "2026-02-16")
	if err != nil || !ok {
		t.Fatalf("Delete=(%v,%v), want (true,nil)", ok, err)
	}
	ok, err = repo.Delete(ctx, "2026-02-16")
	if err != nil || ok {
		t.Fatalf("再次删除=(%v,%v), want (false,nil)", ok, err)
	}
}
