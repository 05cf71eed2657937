package suggest

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/fastygo/taskflow/domain"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func newEngine(opts ...Option) *Engine {
	return New(append([]Option{WithClock(func() time.Time { return now }), WithLocation(time.UTC)}, opts...)...)
}

func pending(id string) domain.Task {
	return domain.Task{ID: id, Title: id, Category: domain.CategoryPersonal, Priority: domain.PriorityMedium, Status: domain.StatusPending}
}

func completedAt(id string, when time.Time) domain.Task {
	t := pending(id)
	t.Status = domain.StatusCompleted
	t.CompletedAt = at(when)
	return t
}

// everyRule returns tasks that trigger all six rules at once.
func everyRule() []domain.Task {
	overdue := pending("overdue")
	overdue.DueDate = at(now.AddDate(0, 0, -2))
	today := pending("today")
	today.DueDate = at(now.Add(6 * time.Hour))
	high := pending("high")
	high.Priority = domain.PriorityHigh

	tasks := []domain.Task{overdue, today, high, pending("n1"), pending("n2"), pending("n3")}
	longAgo := time.Date(2024, 6, 1, 9, 15, 0, 0, time.UTC)
	tasks = append(tasks,
		completedAt("c1", longAgo),
		completedAt("c2", longAgo.Add(5*time.Minute)),
		completedAt("c3", longAgo.AddDate(0, 0, 1)),
		completedAt("c4", longAgo.Add(5*time.Hour)),
		completedAt("c5", longAgo.Add(6*time.Hour)),
	)
	return tasks
}

func suggestionIDs(list []Suggestion) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func TestEvaluateCapsAtThreeLowestPriorities(t *testing.T) {
	t.Parallel()
	got := newEngine().Evaluate(everyRule(), NewDismissed())

	want := []string{RuleOverdue, RuleDueToday, RuleHighPriority}
	if !reflect.DeepEqual(suggestionIDs(got), want) {
		t.Fatalf("want %v, got %v", want, suggestionIDs(got))
	}
	for i, s := range got {
		if s.Priority != i+1 {
			t.Errorf("suggestion %s: want priority %d, got %d", s.ID, i+1, s.Priority)
		}
	}
}

func TestEvaluateAllRulesWithoutCap(t *testing.T) {
	t.Parallel()
	got := newEngine(WithLimit(10)).Evaluate(everyRule(), nil)

	want := []string{RuleOverdue, RuleDueToday, RuleHighPriority, RuleProductivityLow, RuleNoDueDates, RuleOptimalTime}
	if !reflect.DeepEqual(suggestionIDs(got), want) {
		t.Fatalf("want %v, got %v", want, suggestionIDs(got))
	}
	optimal := got[5]
	if optimal.OptimalHour == nil || *optimal.OptimalHour != 9 || optimal.Count != 3 {
		t.Errorf("unexpected optimal-time suggestion %+v", optimal)
	}
	if noDue := got[4]; noDue.Count != 4 || noDue.Action.Name != ActionAddDueDates {
		t.Errorf("unexpected no-due-dates suggestion %+v", noDue)
	}
}

func TestOverdueScenario(t *testing.T) {
	t.Parallel()
	rent := pending("rent")
	rent.Title = "Pay rent"
	rent.DueDate = at(now.AddDate(0, 0, -1))

	got := newEngine().Evaluate([]domain.Task{rent}, NewDismissed())
	if len(got) != 1 {
		t.Fatalf("expected a single suggestion, got %v", suggestionIDs(got))
	}
	s := got[0]
	if s.ID != RuleOverdue || s.Priority != 1 || s.Count != 1 {
		t.Errorf("unexpected suggestion %+v", s)
	}
	if s.Title != "Overdue Tasks Need Attention" || !reflect.DeepEqual(s.TaskIDs, []string{"rent"}) {
		t.Errorf("unexpected suggestion details %+v", s)
	}
}

func TestOverdueUsesStartOfToday(t *testing.T) {
	t.Parallel()
	earlier := pending("earlier")
	earlier.DueDate = at(now.Add(-3 * time.Hour))

	got := newEngine().Evaluate([]domain.Task{earlier}, nil)
	if ids := suggestionIDs(got); !reflect.DeepEqual(ids, []string{RuleDueToday}) {
		t.Errorf("a task due earlier today is due-today, not overdue; got %v", ids)
	}
}

func TestDismissedStaysSuppressed(t *testing.T) {
	t.Parallel()
	engine := newEngine()
	dismissed := NewDismissed()
	dismissed.Dismiss(RuleOverdue)

	for i := 0; i < 2; i++ {
		got := engine.Evaluate(everyRule(), dismissed)
		want := []string{RuleDueToday, RuleHighPriority, RuleProductivityLow}
		if !reflect.DeepEqual(suggestionIDs(got), want) {
			t.Fatalf("round %d: want %v, got %v", i, want, suggestionIDs(got))
		}
	}

	dismissed.Clear()
	if got := engine.Evaluate(everyRule(), dismissed); got[0].ID != RuleOverdue {
		t.Errorf("clearing the set should restore the overdue suggestion, got %v", suggestionIDs(got))
	}
}

func TestProductivityHigh(t *testing.T) {
	t.Parallel()
	tasks := []domain.Task{
		completedAt("a", now.Add(-time.Hour)),
		completedAt("b", now.AddDate(0, 0, -2)),
		completedAt("c", now.AddDate(0, 0, -3)),
		pending("d"),
	}
	got := newEngine().Evaluate(tasks, nil)
	if len(got) != 1 || got[0].ID != RuleProductivityHigh || got[0].Count != 3 {
		t.Errorf("expected productivity-high with count 3, got %+v", got)
	}
}

func TestOptimalHourTieGoesToEarliest(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var tasks []domain.Task
	for i, hour := range []int{15, 15, 15, 8, 8, 8} {
		tasks = append(tasks, completedAt(string(rune('a'+i)), base.Add(time.Duration(hour)*time.Hour)))
	}
	got := newEngine(WithLimit(10)).Evaluate(tasks, nil)
	for _, s := range got {
		if s.ID == RuleOptimalTime {
			if *s.OptimalHour != 8 || s.Description != "You're most productive around 8:00 AM. Consider scheduling important tasks during this time." {
				t.Errorf("unexpected optimal-time suggestion %+v", s)
			}
			return
		}
	}
	t.Fatalf("optimal-time not suggested: %v", suggestionIDs(got))
}

func TestFormatHour(t *testing.T) {
	t.Parallel()
	cases := map[int]string{0: "12:00 AM", 9: "9:00 AM", 12: "12:00 PM", 17: "5:00 PM"}
	for hour, want := range cases {
		if got := FormatHour(hour); got != want {
			t.Errorf("FormatHour(%d): want %q, got %q", hour, want, got)
		}
	}
}

type recordingUpdater struct {
	patches map[string]domain.Patch
}

func (r *recordingUpdater) Update(_ context.Context, id string, patch domain.Patch) (*domain.Task, error) {
	if id == "gone" {
		return nil, domain.ErrTaskNotFound
	}
	r.patches[id] = patch
	return &domain.Task{ID: id}, nil
}

func TestApplyAddDueDates(t *testing.T) {
	t.Parallel()
	engine := newEngine()
	updater := &recordingUpdater{patches: map[string]domain.Patch{}}
	s := Suggestion{ID: RuleNoDueDates, Action: Action{Name: ActionAddDueDates}, TaskIDs: []string{"a", "gone", "b"}}

	updated, err := engine.ApplyAction(context.Background(), updater, s, nil)
	if err != nil {
		t.Fatalf("ApplyAction failed: %v", err)
	}
	if updated != 2 {
		t.Errorf("expected 2 updates, got %d", updated)
	}
	tomorrow := now.AddDate(0, 0, 1)
	for _, id := range []string{"a", "b"} {
		if due := updater.patches[id].DueDate; due == nil || !due.Equal(tomorrow) {
			t.Errorf("task %s: expected due date %v, got %v", id, tomorrow, due)
		}
	}

	updated, err = engine.ApplyAction(context.Background(), updater, Suggestion{ID: RuleOverdue, Action: Action{Filter: "overdue"}}, nil)
	if err != nil || updated != 0 {
		t.Errorf("view-only actions must not touch tasks: %d, %v", updated, err)
	}
}
