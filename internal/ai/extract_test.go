package ai

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractJSONFenced(t *testing.T) {
	text := "这是分析结果：\n```json\n{\"a\": 1}\n```\n以上。"
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON error: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["a"] != 1 {
		t.Fatalf("got=%v, want a=1", got)
	}
}

func TestExtractJSONBareFence(t *testing.T) {
	text := "```\n[1, 2]\n```"
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON error: %v", err)
	}
	if !IsArray(raw) {
		t.Fatalf("顶层应是数组: %s", raw)
	}
}

func TestExtractJSONLeadingProse(t *testing.T) {
	text := "Sure! Here is the result: [1, 2, 3]"
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON error: %v", err)
	}
	var got []int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("got=%v, want [1 2 3]", got)
	}
}

func TestExtractJSONTrailingProse(t *testing.T) {
	// 解析第一个 JSON 值，尾随文字不影响
	text := "{\"score\": 80} 希望对你有帮助！"
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON error: %v", err)
	}
	if !IsObject(raw) {
		t.Fatalf("顶层应是对象: %s", raw)
	}
}

func TestExtractJSONGarbage(t *testing.T) {
	_, err := ExtractJSON("完全没有结构化内容的回复")
	if err == nil {
		t.Fatal("无 JSON 的回复应返回错误")
	}
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("错误类型应为 MalformedResponseError: %T", err)
	}
}

func TestParseScreenTimeDefaults(t *testing.T) {
	// 缺失 total 与置信度：total 补各应用之和，置信度补 medium
	text := `{"apps": [{"name": "YouTube", "duration_minutes": 60}, {"name": "微信", "duration_minutes": 30}]}`
	st, err := ParseScreenTime(text)
	if err != nil {
		t.Fatalf("ParseScreenTime error: %v", err)
	}
	if st.TotalMinutes != 90 {
		t.Fatalf("TotalMinutes=%d, want 90", st.TotalMinutes)
	}
	if st.ExtractionConfidence != "medium" {
		t.Fatalf("ExtractionConfidence=%q, want medium", st.ExtractionConfidence)
	}
}

func TestParseScreenTimeEmptyApps(t *testing.T) {
	st, err := ParseScreenTime(`{"total_screen_time_minutes": 120, "extraction_confidence": "high"}`)
	if err != nil {
		t.Fatalf("ParseScreenTime error: %v", err)
	}
	if st.Apps == nil || len(st.Apps) != 0 {
		t.Fatalf("apps 缺失应补空列表: %+v", st.Apps)
	}
	if st.TotalMinutes != 120 || st.ExtractionConfidence != "high" {
		t.Fatalf("显式字段应原样保留: %+v", st)
	}
}

func TestParseScreenTimeWrongShape(t *testing.T) {
	_, err := ParseScreenTime(`[1, 2, 3]`)
	if err == nil {
		t.Fatal("顶层数组应返回错误")
	}
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("错误类型应为 MalformedResponseError: %T", err)
	}
}
