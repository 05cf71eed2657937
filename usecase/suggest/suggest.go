package suggest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase/analytics"
)

// Rule identifiers. They double as suggestion ids for dismissal.
const (
	RuleOverdue          = "overdue-tasks"
	RuleDueToday         = "due-today"
	RuleHighPriority     = "high-priority"
	RuleProductivityHigh = "productivity-high"
	RuleProductivityLow  = "productivity-low"
	RuleNoDueDates       = "no-due-dates"
	RuleOptimalTime      = "optimal-time"
)

// ActionAddDueDates is the only action that mutates tasks.
const ActionAddDueDates = "add-due-dates"

const DefaultLimit = 3

type Kind string

const (
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
)

// Action tells the control surface what a suggestion offers to do.
type Action struct {
	Label  string `json:"label"`
	Filter string `json:"filter,omitempty"`
	View   string `json:"view,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Suggestion is an advisory message produced by one rule.
type Suggestion struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      Action   `json:"action"`
	Priority    int      `json:"priority"`
	Count       int      `json:"count"`
	TaskIDs     []string `json:"taskIds,omitempty"`
	OptimalHour *int     `json:"optimalHour,omitempty"`
}

// Dismissed is the session-scoped set of suppressed suggestion ids. It is
// never persisted; a fresh set means a fresh session.
type Dismissed struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewDismissed(ids ...string) *Dismissed {
	d := &Dismissed{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		d.ids[id] = struct{}{}
	}
	return d
}

func (d *Dismissed) Dismiss(id string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.ids == nil {
		d.ids = make(map[string]struct{})
	}
	d.ids[id] = struct{}{}
	d.mu.Unlock()
}

func (d *Dismissed) Has(id string) bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ids[id]
	return ok
}

func (d *Dismissed) Clear() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.ids = make(map[string]struct{})
	d.mu.Unlock()
}

// IDs returns the dismissed ids in sorted order.
func (d *Dismissed) IDs() []string {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.ids))
	for id := range d.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Engine evaluates the suggestion rules. It holds no task state.
type Engine struct {
	now   func() time.Time
	loc   *time.Location
	limit int
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLimit caps the number of suggestions returned. Values below 1 are ignored.
func WithLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.limit = limit
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now, loc: time.Local, limit: DefaultLimit}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every rule, drops dismissed ids, orders by priority and caps
// the result.
func (e *Engine) Evaluate(tasks []domain.Task, dismissed *Dismissed) []Suggestion {
	now := e.now().In(e.loc)
	today := analytics.StartOfDay(now, e.loc)

	candidates := make([]Suggestion, 0, 6)
	for _, rule := range []func([]domain.Task, time.Time, time.Time) *Suggestion{
		e.overdue,
		e.dueToday,
		e.highPriority,
		e.productivity,
		e.noDueDates,
		e.optimalTime,
	} {
		if s := rule(tasks, now, today); s != nil && !dismissed.Has(s.ID) {
			candidates = append(candidates, *s)
		}
	}

	slices.SortStableFunc(candidates, func(a, b Suggestion) int {
		return a.Priority - b.Priority
	})
	if len(candidates) > e.limit {
		candidates = candidates[:e.limit]
	}
	return candidates
}

func (e *Engine) overdue(tasks []domain.Task, _, today time.Time) *Suggestion {
	ids := collect(tasks, func(t *domain.Task) bool {
		return t.DueDate != nil && t.DueDate.Before(today) && !t.IsCompleted()
	})
	if len(ids) == 0 {
		return nil
	}
	return &Suggestion{
		ID:          RuleOverdue,
		Kind:        KindWarning,
		Title:       "Overdue Tasks Need Attention",
		Description: fmt.Sprintf("You have %d overdue %s. Consider rescheduling or completing them.", len(ids), plural(len(ids), "task", "tasks")),
		Action:      Action{Label: "View Overdue", Filter: "overdue"},
		Priority:    1,
		Count:       len(ids),
		TaskIDs:     ids,
	}
}

func (e *Engine) dueToday(tasks []domain.Task, now, _ time.Time) *Suggestion {
	ids := collect(tasks, func(t *domain.Task) bool {
		return t.DueDate != nil && !t.IsCompleted() && analytics.SameDay(*t.DueDate, now, e.loc)
	})
	if len(ids) == 0 {
		return nil
	}
	return &Suggestion{
		ID:          RuleDueToday,
		Kind:        KindInfo,
		Title:       "Tasks Due Today",
		Description: fmt.Sprintf("%d %s due today. Focus on completing them first.", len(ids), plural(len(ids), "task is", "tasks are")),
		Action:      Action{Label: "View Today's Tasks", Filter: "due-today"},
		Priority:    2,
		Count:       len(ids),
		TaskIDs:     ids,
	}
}

func (e *Engine) highPriority(tasks []domain.Task, _, _ time.Time) *Suggestion {
	ids := collect(tasks, func(t *domain.Task) bool {
		return t.Priority == domain.PriorityHigh && t.Status == domain.StatusPending
	})
	if len(ids) == 0 {
		return nil
	}
	return &Suggestion{
		ID:          RuleHighPriority,
		Kind:        KindWarning,
		Title:       "High Priority Tasks Waiting",
		Description: fmt.Sprintf("You have %d high-priority %s that need attention.", len(ids), plural(len(ids), "task", "tasks")),
		Action:      Action{Label: "View High Priority", Filter: "high-priority"},
		Priority:    3,
		Count:       len(ids),
		TaskIDs:     ids,
	}
}

func (e *Engine) productivity(tasks []domain.Task, _, today time.Time) *Suggestion {
	if len(tasks) == 0 {
		return nil
	}
	weekAgo := today.AddDate(0, 0, -7)
	ids := collect(tasks, func(t *domain.Task) bool {
		return t.CompletedAt != nil && t.CompletedAt.After(weekAgo)
	})
	rate := float64(len(ids)) / float64(len(tasks)) * 100

	switch {
	case rate > 70:
		return &Suggestion{
			ID:          RuleProductivityHigh,
			Kind:        KindSuccess,
			Title:       "Great Productivity!",
			Description: fmt.Sprintf("You've completed %d tasks this week. You're on fire!", len(ids)),
			Action:      Action{Label: "View Analytics", View: "analytics"},
			Priority:    4,
			Count:       len(ids),
		}
	case rate < 30 && len(tasks) > 5:
		return &Suggestion{
			ID:          RuleProductivityLow,
			Kind:        KindInfo,
			Title:       "Boost Your Productivity",
			Description: "Consider breaking down large tasks into smaller, manageable chunks.",
			Action:      Action{Label: "View Tips", View: "tips"},
			Priority:    4,
			Count:       len(ids),
		}
	}
	return nil
}

func (e *Engine) noDueDates(tasks []domain.Task, _, _ time.Time) *Suggestion {
	ids := collect(tasks, func(t *domain.Task) bool {
		return t.DueDate == nil && t.Status == domain.StatusPending
	})
	if len(ids) <= 3 {
		return nil
	}
	return &Suggestion{
		ID:          RuleNoDueDates,
		Kind:        KindInfo,
		Title:       "Add Due Dates",
		Description: fmt.Sprintf("%d tasks don't have due dates. Adding deadlines can improve focus.", len(ids)),
		Action:      Action{Label: "Add Due Dates", Name: ActionAddDueDates},
		Priority:    5,
		Count:       len(ids),
		TaskIDs:     ids,
	}
}

func (e *Engine) optimalTime(tasks []domain.Task, _, _ time.Time) *Suggestion {
	var hours [24]int
	completed := 0
	for i := range tasks {
		if tasks[i].CompletedAt == nil {
			continue
		}
		completed++
		hours[tasks[i].CompletedAt.In(e.loc).Hour()]++
	}
	if completed < 5 {
		return nil
	}

	best := 0
	for hour := 1; hour < len(hours); hour++ {
		if hours[hour] > hours[best] {
			best = hour
		}
	}
	if hours[best] < 3 {
		return nil
	}
	hour := best
	return &Suggestion{
		ID:          RuleOptimalTime,
		Kind:        KindInfo,
		Title:       "Optimal Work Time",
		Description: fmt.Sprintf("You're most productive around %s. Consider scheduling important tasks during this time.", FormatHour(hour)),
		Action:      Action{Label: "Schedule Tasks"},
		Priority:    6,
		Count:       hours[best],
		OptimalHour: &hour,
	}
}

// FormatHour renders a 0-23 hour on a 12-hour clock, e.g. "9:00 AM".
func FormatHour(hour int) string {
	switch {
	case hour == 0:
		return "12:00 AM"
	case hour < 12:
		return fmt.Sprintf("%d:00 AM", hour)
	case hour == 12:
		return "12:00 PM"
	default:
		return fmt.Sprintf("%d:00 PM", hour-12)
	}
}

// TaskUpdater is the slice of the task store an action needs.
type TaskUpdater interface {
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.Task, error)
}

// ApplyAction performs the suggestion's action. Only add-due-dates touches
// the store: every listed task gets a due date one day from now. The number
// of updated tasks is returned; the first failure stops the run.
func (e *Engine) ApplyAction(ctx context.Context, updater TaskUpdater, s Suggestion, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if s.Action.Name != ActionAddDueDates {
		return 0, nil
	}
	due := e.now().AddDate(0, 0, 1)
	updated := 0
	for _, id := range s.TaskIDs {
		if _, err := updater.Update(ctx, id, domain.Patch{DueDate: &due}); err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				continue
			}
			return updated, err
		}
		updated++
	}
	logger.Info("suggestion applied", zap.String("suggestion_id", s.ID), zap.Int("updated", updated))
	return updated, nil
}

// Find returns the current, undismissed suggestion with the given id.
func (e *Engine) Find(tasks []domain.Task, dismissed *Dismissed, id string) (Suggestion, bool) {
	for _, s := range e.Evaluate(tasks, dismissed) {
		if s.ID == id {
			return s, true
		}
	}
	return Suggestion{}, false
}

func collect(tasks []domain.Task, match func(*domain.Task) bool) []string {
	var ids []string
	for i := range tasks {
		if match(&tasks[i]) {
			ids = append(ids, tasks[i].ID)
		}
	}
	return ids
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
