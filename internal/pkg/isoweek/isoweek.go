package isoweek

import (
	"fmt"
	"time"
)

// DateLayout 日期格式 YYYY-MM-DD
const DateLayout = "2006-01-02"

// ParseID 解析 "YYYY-Www" 形式的周 ID，返回 ISO 年份和周数
func ParseID(weekID string) (year int, week int, err error) {
	if _, err := fmt.Sscanf(weekID, "%4d-W%2d", &year, &week); err != nil {
		return 0, 0, fmt.Errorf("周 ID 格式无效（期望 YYYY-Www）: %q", weekID)
	}
	if len(weekID) != 8 || weekID[4] != '-' || weekID[5] != 'W' {
		return 0, 0, fmt.Errorf("周 ID 格式无效（期望 YYYY-Www）: %q", weekID)
	}
	if week < 1 || week > WeeksInYear(year) {
		return 0, 0, fmt.Errorf("周数超出范围: %q（%d 年共 %d 周）", weekID, year, WeeksInYear(year))
	}
	return year, week, nil
}

// WeeksInYear 指定 ISO 年的周数（52 或 53）
// ISO 8601 规则：12 月 28 日必然落在当年最后一周。
func WeeksInYear(year int) int {
	_, w := time.Date(year, 12, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// Range 返回周 ID 对应的周一和周日日期
// 严格按 ISO 8601 周规则计算：第 1 周是包含当年第一个星期四的那一周。
func Range(weekID string) (start, end time.Time, err error) {
	year, week, err := ParseID(weekID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	// 1 月 4 日必然落在第 1 周，回退到它所在周的周一
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))

	start = monday.AddDate(0, 0, (week-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end, nil
}

// RangeDates 与 Range 相同，但返回 YYYY-MM-DD 字符串
func RangeDates(weekID string) (startDate, endDate string, err error) {
	start, end, err := Range(weekID)
	if err != nil {
		return "", "", err
	}
	return start.Format(DateLayout), end.Format(DateLayout), nil
}

// FromDate 返回日期所属的周 ID
func FromDate(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// FromDateString 返回 YYYY-MM-DD 日期所属的周 ID
func FromDateString(date string) (string, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return "", fmt.Errorf("日期格式无效: %q", date)
	}
	return FromDate(t), nil
}

// Previous 返回前一周的周 ID，正确处理 ISO 年边界
func Previous(weekID string) (string, error) {
	start, _, err := Range(weekID)
	if err != nil {
		return "", err
	}
	return FromDate(start.AddDate(0, 0, -7)), nil
}
