package analytics

import (
	"testing"
	"time"

	"github.com/fastygo/taskflow/domain"
)

var now = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestCompute(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Category: domain.CategoryWork, Status: domain.StatusCompleted, CompletedAt: ptr(now.Add(-time.Hour))},
		{ID: "2", Category: domain.CategoryWork, Status: domain.StatusPending},
		{ID: "3", Category: domain.CategoryHealth, Status: domain.StatusInProgress},
		{ID: "4", Category: domain.CategoryLearning, Status: domain.StatusCompleted, CompletedAt: ptr(now.AddDate(0, 0, -6))},
		{ID: "5", Category: domain.CategoryLearning, Status: domain.StatusCompleted, CompletedAt: ptr(now.AddDate(0, 0, -7))},
	}

	got := Compute(tasks, now, time.UTC)

	if got.TotalTasks != 5 || got.CompletedTasks != 3 || got.PendingTasks != 1 {
		t.Errorf("unexpected totals: %+v", got)
	}
	if got.CategoryDistribution[domain.CategoryWork] != 2 || got.CategoryDistribution[domain.CategoryHealth] != 1 {
		t.Errorf("unexpected distribution: %v", got.CategoryDistribution)
	}
	if len(got.CompletionTrends) != TrendDays {
		t.Fatalf("expected %d trend points, got %d", TrendDays, len(got.CompletionTrends))
	}
	first, last := got.CompletionTrends[0], got.CompletionTrends[TrendDays-1]
	if first.Date != "2024-03-04" || first.Completed != 1 {
		t.Errorf("unexpected first trend point %+v", first)
	}
	if last.Date != "2024-03-10" || last.Completed != 1 {
		t.Errorf("unexpected last trend point %+v", last)
	}
	if !got.LastUpdated.Equal(now) {
		t.Errorf("expected LastUpdated %v, got %v", now, got.LastUpdated)
	}
}

func TestComputeInsights(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Status: domain.StatusCompleted, CompletedAt: ptr(now.Add(-2 * time.Hour)), ActualTime: 1.5},
		{ID: "2", Status: domain.StatusCompleted, CompletedAt: ptr(now.AddDate(0, 0, -3)), ActualTime: 0.5},
		{ID: "3", Status: domain.StatusCompleted, CompletedAt: ptr(now.AddDate(0, 0, -20))},
		{ID: "4", Status: domain.StatusPending, DueDate: ptr(now.Add(-time.Hour))},
		{ID: "5", Status: domain.StatusPending, DueDate: ptr(now.Add(time.Hour))},
	}

	got := ComputeInsights(tasks, now, time.UTC)

	if got.ProductivityScore != 60 || got.ScoreLabel != "Good" {
		t.Errorf("expected score 60/Good, got %d/%s", got.ProductivityScore, got.ScoreLabel)
	}
	if got.CompletedToday != 1 {
		t.Errorf("expected 1 completed today, got %d", got.CompletedToday)
	}
	if got.CompletedThisWeek != 2 {
		t.Errorf("expected 2 completed this week, got %d", got.CompletedThisWeek)
	}
	if got.OverdueCount != 1 {
		t.Errorf("expected 1 overdue, got %d", got.OverdueCount)
	}
	if got.AverageCompletionHours != 1 {
		t.Errorf("expected 1h average, got %v", got.AverageCompletionHours)
	}
}

func TestScoreLabel(t *testing.T) {
	cases := map[int]string{0: "Needs Improvement", 39: "Needs Improvement", 40: "Fair", 60: "Good", 80: "Excellent", 100: "Excellent"}
	for score, want := range cases {
		if got := ScoreLabel(score); got != want {
			t.Errorf("ScoreLabel(%d) = %s, want %s", score, got, want)
		}
	}
	if ProductivityScore(0, 0) != 0 {
		t.Error("empty list should score 0")
	}
	if ProductivityScore(3, 1) != 33 {
		t.Errorf("expected 33, got %d", ProductivityScore(3, 1))
	}
}
