package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuqie6/DayMirror/internal/schema"
)

// 提示词上下文的拼装
// 数据来自数据库，格式化成模型友好的纯文本，历史数据只取最近 7 天。

func formatMinutes(mins int) string {
	return fmt.Sprintf("%d小时%d分", mins/60, mins%60)
}

// formatScreenTime 把屏幕时间数据格式化为提示词片段
func formatScreenTime(st schema.ScreenTime) string {
	if !st.Present() {
		return "无数据"
	}

	lines := []string{"总屏幕时间: " + formatMinutes(st.TotalMinutes)}
	for _, app := range st.Apps {
		lines = append(lines, fmt.Sprintf("  - %s: %s", app.Name, formatMinutes(app.DurationMinutes)))
	}
	return strings.Join(lines, "\n")
}

// formatPastData 把历史记录与对应分析格式化为提示词片段
func formatPastData(pastRecords []schema.DailyRecord, pastAnalyses []schema.DailyAnalysis) string {
	if len(pastRecords) == 0 {
		return "无历史数据"
	}

	byDate := make(map[string]*schema.DailyAnalysis, len(pastAnalyses))
	for i := range pastAnalyses {
		byDate[pastAnalyses[i].Date] = &pastAnalyses[i]
	}

	// 只取最近 7 条
	records := pastRecords
	if len(records) > 7 {
		records = records[len(records)-7:]
	}

	var lines []string
	for _, record := range records {
		if a, ok := byDate[record.Date]; ok {
			lines = append(lines, fmt.Sprintf("%s: 评分=%d, 高效=%.1fh, 浪费=%.1fh",
				record.Date, a.OverallScore, a.ProductiveHours, a.WastedHours))
		} else {
			lines = append(lines, record.Date+": 无分析数据")
		}
	}
	return strings.Join(lines, "\n")
}

// BuildDailyAnalysisPrompt 构建日次分析的用户提示词
func BuildDailyAnalysisPrompt(record *schema.DailyRecord, pastRecords []schema.DailyRecord, pastAnalyses []schema.DailyAnalysis, memories []string) string {
	planned := "无"
	if len(record.TasksPlanned) > 0 {
		planned = strings.Join(record.TasksPlanned, ", ")
	}
	completed := "无"
	if len(record.TasksCompleted) > 0 {
		completed = strings.Join(record.TasksCompleted, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## 今日行为记录（%s）\n\n", record.Date)
	fmt.Fprintf(&b, "### 用户输入\n%s\n\n", record.RawInput)
	fmt.Fprintf(&b, "### 计划任务\n%s\n\n", planned)
	fmt.Fprintf(&b, "### 完成任务\n%s\n", completed)

	// OCR 可能给出只有总时长没有应用明细的结果，这种残缺数据不进提示词
	if len(record.ScreenTime.Apps) > 0 {
		fmt.Fprintf(&b, "\n### 屏幕时间\n%s\n", formatScreenTime(record.ScreenTime))
	}

	if len(pastRecords) > 0 {
		fmt.Fprintf(&b, "\n## 历史数据（参考）\n%s\n", formatPastData(pastRecords, pastAnalyses))
	}

	if len(memories) > 0 {
		b.WriteString("\n## 长期记忆中的相关片段（参考）\n")
		for _, m := range memories {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}

	b.WriteString("\n请基于以上数据进行分析。")
	return b.String()
}

// BuildWeeklyAnalysisPrompt 构建周次分析的用户提示词
// 按日期升序列出每天的评分概要，聚合整周各应用的屏幕时间，
// 有上周分析时附上做对比。
func BuildWeeklyAnalysisPrompt(weekID string, records []schema.DailyRecord, analyses []schema.DailyAnalysis, lastWeek *schema.WeeklyAnalysis) string {
	byDate := make(map[string]*schema.DailyAnalysis, len(analyses))
	for i := range analyses {
		byDate[analyses[i].Date] = &analyses[i]
	}

	sorted := make([]schema.DailyRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var b strings.Builder
	fmt.Fprintf(&b, "## 本周（%s）的数据\n\n", weekID)
	b.WriteString("### 每日评分与概要\n")
	for _, record := range sorted {
		if a, ok := byDate[record.Date]; ok {
			fmt.Fprintf(&b, "- %s: 评分=%d, 高效=%.1fh, 浪费=%.1fh, 视频=%.1fh, 任务完成=%d%%\n",
				record.Date, a.OverallScore, a.ProductiveHours, a.WastedHours,
				a.YoutubeHours, int(a.TaskCompletionRate*100))
			if bad := a.Detail.BadPoints; len(bad) > 0 {
				if len(bad) > 2 {
					bad = bad[:2]
				}
				fmt.Fprintf(&b, "  → 问题点: %s\n", strings.Join(bad, ", "))
			}
		} else {
			raw := record.RawInput
			// 按 rune 截断，避免把多字节字符劈开
			if r := []rune(raw); len(r) > 100 {
				raw = string(r[:100])
			}
			fmt.Fprintf(&b, "- %s: 无分析（行为记录: %s...）\n", record.Date, raw)
		}
	}

	// 整周屏幕时间按应用聚合
	appTotals := make(map[string]int)
	for _, record := range sorted {
		for _, app := range record.ScreenTime.Apps {
			appTotals[app.Name] += app.DurationMinutes
		}
	}
	if len(appTotals) > 0 {
		names := make([]string, 0, len(appTotals))
		for name := range appTotals {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if appTotals[names[i]] != appTotals[names[j]] {
				return appTotals[names[i]] > appTotals[names[j]]
			}
			return names[i] < names[j]
		})

		b.WriteString("\n### 本周屏幕时间（按应用合计）\n")
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %s\n", name, formatMinutes(appTotals[name]))
		}
	}

	if lastWeek != nil {
		b.WriteString("\n### 上周（参考）\n")
		fmt.Fprintf(&b, "- 平均评分: %d, 评分趋势: %s\n", lastWeek.AvgOverallScore, lastWeek.ScoreTrend)
		if goals := lastWeek.Deep.ImprovementPlan.NextWeekGoals; len(goals) > 0 {
			fmt.Fprintf(&b, "- 上周定下的目标: %s\n", strings.Join(goals, ", "))
		}
	}

	b.WriteString("\n请基于以上数据进行深度的周次分析。")
	return b.String()
}
