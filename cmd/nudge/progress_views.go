package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"nudge/internal/progress"
)

const ruleWidth = 50

func rule(n int) string {
	return strings.Repeat("=", n)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func renderCategories(w io.Writer) {
	fmt.Fprintln(w, "\n📋 Available Task Categories:")
	fmt.Fprintln(w, rule(30))
	for _, c := range progress.Categories {
		fmt.Fprintf(w, "  %s: %s\n", c.Key, c.Label)
	}
}

func renderTasks(w io.Writer, project, date string, tasks []progress.TaskEntry) {
	fmt.Fprintf(w, "\n🌞 %s Tasks for %s 🌞\n", project, date)
	fmt.Fprintln(w, rule(ruleWidth))

	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks logged for today yet!")
		fmt.Fprintln(w, "\n💡 Suggested focus areas:")
		for _, c := range progress.Categories {
			fmt.Fprintf(w, "  • %s\n", c.Label)
		}
		return
	}

	var hours float64
	completed := 0
	for _, task := range tasks {
		status := "⏳"
		if task.Completed {
			status = "✅"
			completed++
		}
		fmt.Fprintf(w, "%s [%d] %s\n", status, task.ID, progress.CategoryLabel(task.Category))
		fmt.Fprintf(w, "    %s\n", task.Description)
		if task.Hours > 0 {
			fmt.Fprintf(w, "    ⏱️  %s hours\n", formatHours(task.Hours))
		}
		fmt.Fprintln(w)
		hours += task.Hours
	}
	fmt.Fprintf(w, "📊 Summary: %d/%d tasks completed\n", completed, len(tasks))
	fmt.Fprintf(w, "⏱️  Total hours today: %s\n", formatHours(hours))
}

func renderMilestones(w io.Writer, project string, milestones []progress.Milestone) {
	fmt.Fprintf(w, "\n🏆 %s Milestones (%d total)\n", project, len(milestones))
	fmt.Fprintln(w, rule(40))
	if len(milestones) == 0 {
		fmt.Fprintf(w, "No milestones yet. Keep working on %s!\n", project)
		return
	}
	for _, m := range milestones {
		fmt.Fprintf(w, "🏆 %s\n", m.Title)
		if m.Description != "" {
			fmt.Fprintf(w, "   %s\n", m.Description)
		}
		fmt.Fprintf(w, "   📅 %s\n\n", m.Date)
	}
}

func renderStats(w io.Writer, project string, stats progress.Stats, byCategory bool) {
	fmt.Fprintf(w, "\n📊 %s Progress Statistics\n", project)
	fmt.Fprintln(w, rule(35))
	fmt.Fprintf(w, "📅 Started: %s\n", stats.StartDate)
	fmt.Fprintf(w, "📝 Total tasks: %d\n", stats.TotalTasks)
	fmt.Fprintf(w, "✅ Completed tasks: %d\n", stats.CompletedTasks)
	fmt.Fprintf(w, "⏱️  Total hours logged: %s\n", formatHours(stats.TotalHours))
	fmt.Fprintf(w, "🏆 Milestones: %d\n", stats.Milestones)
	if rate, ok := stats.CompletionRate(); ok {
		fmt.Fprintf(w, "📈 Completion rate: %.1f%%\n", rate)
	}
	if !byCategory || len(stats.HoursByCategory) == 0 {
		return
	}

	keys := make([]string, 0, len(stats.HoursByCategory))
	for key := range stats.HoursByCategory {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{progress.CategoryLabel(key), formatHours(stats.HoursByCategory[key])})
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderTable([]string{"Category", "Hours"}, rows, []columnAlignment{alignLeft, alignRight}))
}
