package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuqie6/DayMirror/internal/schema"
)

// MalformedResponseError 模型回复无法还原为结构化数据
type MalformedResponseError struct {
	Snippet string // 回复片段（截断后），便于排查
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("模型回复不是合法的结构化数据: %v（片段: %q）", e.Err, e.Snippet)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ExtractJSON 从模型回复中提取第一个 JSON 值
//
// 提取顺序（命中即停）：
//  1. ```json 围栏块的内部
//  2. 任意 ``` 围栏块的内部
//  3. 全文
//
// 之后从左到右找到第一个 { 或 [，丢弃之前的说明性文字，
// 解析剩余部分。解析失败是硬错误（MalformedResponseError），由调用方处理。
func ExtractJSON(text string) (json.RawMessage, error) {
	candidate := stripFences(text)

	// 丢弃第一个定界符之前的前导文字
	if idx := strings.IndexAny(candidate, "{["); idx > 0 {
		candidate = candidate[idx:]
	}
	candidate = strings.TrimSpace(candidate)

	var raw json.RawMessage
	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	if err := dec.Decode(&raw); err != nil {
		return nil, &MalformedResponseError{Snippet: snippet(text), Err: err}
	}
	return raw, nil
}

// stripFences 取出围栏块内部，优先 ```json 标记的块
func stripFences(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "```json")
	if start == -1 {
		start = strings.Index(text, "```")
	}
	if start == -1 {
		return text
	}

	// 跳过围栏起始行
	nl := strings.Index(text[start:], "\n")
	if nl == -1 {
		return text
	}
	inner := text[start+nl+1:]

	if end := strings.LastIndex(inner, "```"); end != -1 {
		inner = inner[:end]
	}
	return strings.TrimSpace(inner)
}

func snippet(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > 120 {
		return text[:120] + "..."
	}
	return text
}

// IsArray 判断提取出的 JSON 顶层是否是数组
func IsArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// IsObject 判断提取出的 JSON 顶层是否是对象
func IsObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// screenTimePayload OCR 回复的中间表示
// 指针字段用于区分"键不存在"和"值为零"。
type screenTimePayload struct {
	Apps                 []schema.ScreenTimeApp `json:"apps"`
	TotalMinutes         *int                   `json:"total_screen_time_minutes"`
	ExtractionConfidence string                 `json:"extraction_confidence"`
}

// ParseScreenTime 解析 OCR 回复并做缺省填充
// apps 缺失补空列表；总时长缺失补各应用之和；置信度缺失补 medium。
func ParseScreenTime(text string) (schema.ScreenTime, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return schema.ScreenTime{}, err
	}
	if !IsObject(raw) {
		return schema.ScreenTime{}, &MalformedResponseError{
			Snippet: snippet(text),
			Err:     fmt.Errorf("期望 JSON 对象，得到其他形状"),
		}
	}

	var payload screenTimePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return schema.ScreenTime{}, &MalformedResponseError{Snippet: snippet(text), Err: err}
	}

	st := schema.ScreenTime{
		Apps:                 payload.Apps,
		ExtractionConfidence: payload.ExtractionConfidence,
	}
	if st.Apps == nil {
		st.Apps = []schema.ScreenTimeApp{}
	}
	if payload.TotalMinutes != nil {
		st.TotalMinutes = *payload.TotalMinutes
	} else {
		for _, app := range st.Apps {
			st.TotalMinutes += app.DurationMinutes
		}
	}
	if st.ExtractionConfidence == "" {
		st.ExtractionConfidence = "medium"
	}
	return st, nil
}
