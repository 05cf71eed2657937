// Package analytics derives aggregate figures from a task list. Every
// function is pure; callers decide when to recompute.
package analytics

import (
	"math"
	"time"

	"github.com/fastygo/taskflow/domain"
)

// TrendDays is the length of the completion trend window.
const TrendDays = 7

const dateLayout = "2006-01-02"

// Compute builds a fresh analytics snapshot.
func Compute(tasks []domain.Task, now time.Time, loc *time.Location) domain.Analytics {
	if loc == nil {
		loc = time.Local
	}
	snapshot := domain.Analytics{
		TotalTasks:           len(tasks),
		CategoryDistribution: make(map[domain.Category]int),
		CompletionTrends:     CompletionTrends(tasks, now, loc),
		LastUpdated:          now,
	}
	for i := range tasks {
		switch tasks[i].Status {
		case domain.StatusCompleted:
			snapshot.CompletedTasks++
		case domain.StatusPending:
			snapshot.PendingTasks++
		}
		snapshot.CategoryDistribution[tasks[i].Category]++
	}
	return snapshot
}

// CompletionTrends counts completions per day for the last TrendDays days,
// oldest first and ending today.
func CompletionTrends(tasks []domain.Task, now time.Time, loc *time.Location) []domain.TrendPoint {
	if loc == nil {
		loc = time.Local
	}
	byDate := make(map[string]int)
	for i := range tasks {
		if tasks[i].CompletedAt == nil {
			continue
		}
		byDate[tasks[i].CompletedAt.In(loc).Format(dateLayout)]++
	}

	today := StartOfDay(now, loc)
	trends := make([]domain.TrendPoint, 0, TrendDays)
	for i := TrendDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(dateLayout)
		trends = append(trends, domain.TrendPoint{Date: date, Completed: byDate[date]})
	}
	return trends
}

// ComputeInsights derives the dashboard figures.
func ComputeInsights(tasks []domain.Task, now time.Time, loc *time.Location) domain.Insights {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format(dateLayout)
	weekAgo := now.AddDate(0, 0, -7)

	var (
		insights  domain.Insights
		completed int
		timed     int
		hours     float64
	)
	for i := range tasks {
		task := &tasks[i]
		if task.IsCompleted() {
			completed++
		}
		if task.IsOverdue(now) {
			insights.OverdueCount++
		}
		if task.CompletedAt == nil {
			continue
		}
		if task.CompletedAt.In(loc).Format(dateLayout) == today {
			insights.CompletedToday++
		}
		if !task.CompletedAt.Before(weekAgo) {
			insights.CompletedThisWeek++
		}
		if task.ActualTime > 0 {
			timed++
			hours += task.ActualTime
		}
	}

	insights.ProductivityScore = ProductivityScore(len(tasks), completed)
	insights.ScoreLabel = ScoreLabel(insights.ProductivityScore)
	if timed > 0 {
		insights.AverageCompletionHours = math.Round(hours/float64(timed)*10) / 10
	}
	return insights
}

// ProductivityScore is the completed share of all tasks as a whole percentage.
func ProductivityScore(total, completed int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func ScoreLabel(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
