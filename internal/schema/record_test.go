package schema

import (
	"testing"
)

func TestRecomputeCompletionRate(t *testing.T) {
	r := &DailyRecord{
		TasksPlanned:   JSONArray{"a", "b", "c", "d"},
		TasksCompleted: JSONArray{"a", "b"},
	}
	r.RecomputeCompletionRate()
	if r.CompletionRate != 0.5 {
		t.Fatalf("completionRate = %v, want 0.5", r.CompletionRate)
	}
}

func TestRecomputeCompletionRateEmptyPlanned(t *testing.T) {
	r := &DailyRecord{
		CompletionRate: 0.9, // 客户端传来的值必须被覆盖
		TasksCompleted: JSONArray{"a"},
	}
	r.RecomputeCompletionRate()
	if r.CompletionRate != 0 {
		t.Fatalf("completionRate = %v, want 0", r.CompletionRate)
	}
}

func TestScreenTimeZeroValueStoresNull(t *testing.T) {
	var st ScreenTime
	if st.Present() {
		t.Fatalf("zero ScreenTime should not be present")
	}
	v, err := st.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != nil {
		t.Fatalf("Value = %v, want nil", v)
	}

	st.Apps = []ScreenTimeApp{{Name: "Chrome", DurationMinutes: 30}}
	if !st.Present() {
		t.Fatalf("ScreenTime with apps should be present")
	}
	if v, err = st.Value(); err != nil || v == nil {
		t.Fatalf("Value = %v, err = %v, want non-nil", v, err)
	}
}

func TestScreenTimeScanNull(t *testing.T) {
	st := ScreenTime{TotalMinutes: 120}
	if err := st.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if st.Present() {
		t.Fatalf("scanned NULL should reset to zero value: %+v", st)
	}
}

func TestAnalysisDetailNormalize(t *testing.T) {
	var d AnalysisDetail
	d.Normalize()
	if d.GoodPoints == nil || d.BadPoints == nil || d.RootCauses == nil ||
		d.ThinkingWeaknesses == nil || d.BehaviorWeaknesses == nil ||
		d.ImprovementSuggestions == nil {
		t.Fatalf("normalize left nil list: %+v", d)
	}
	if d.ComparisonWithPast.RecurringPatterns == nil || d.ComparisonWithPast.ImprovementsFromLastWeek == nil {
		t.Fatalf("normalize left nil comparison list: %+v", d.ComparisonWithPast)
	}
}

func TestAnalysisDetailScanNormalizes(t *testing.T) {
	var d AnalysisDetail
	if err := d.Scan([]byte(`{"good_points":["早起"]}`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(d.GoodPoints) != 1 || d.GoodPoints[0] != "早起" {
		t.Fatalf("goodPoints = %v", d.GoodPoints)
	}
	if d.BadPoints == nil || d.ImprovementSuggestions == nil {
		t.Fatalf("scan should normalize missing lists: %+v", d)
	}
}
