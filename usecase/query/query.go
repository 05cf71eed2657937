package query

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase/analytics"
)

// BasicFilter is the single-select quick filter. Besides the named values
// below, any category name selects that category.
type BasicFilter string

const (
	FilterAll          BasicFilter = "all"
	FilterPending      BasicFilter = "pending"
	FilterCompleted    BasicFilter = "completed"
	FilterUrgent       BasicFilter = "urgent"
	FilterOverdue      BasicFilter = "overdue"
	FilterDueToday     BasicFilter = "due-today"
	FilterHighPriority BasicFilter = "high-priority"
)

// SortKey selects the output order.
type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortTitle     SortKey = "title"
	SortDueDate   SortKey = "dueDate"
	SortPriority  SortKey = "priority"
)

// AdvancedFilter is a conjunctive set of criteria; zero-valued fields are ignored.
type AdvancedFilter struct {
	Categories     []domain.Category
	Priorities     []domain.Priority
	Statuses       []domain.Status
	Tags           []string
	DueFrom        *time.Time
	DueTo          *time.Time
	HasDescription *bool
	IsOverdue      *bool
}

// IsZero reports whether no advanced criterion is set.
func (f AdvancedFilter) IsZero() bool {
	return len(f.Categories) == 0 && len(f.Priorities) == 0 && len(f.Statuses) == 0 &&
		len(f.Tags) == 0 && f.DueFrom == nil && f.DueTo == nil &&
		f.HasDescription == nil && f.IsOverdue == nil
}

// Params bundles one view configuration.
type Params struct {
	Basic    BasicFilter
	Advanced AdvancedFilter
	Search   string
	Sort     SortKey
}

// Counts are sidebar badges computed over the unfiltered list.
type Counts struct {
	Total      int                     `json:"total"`
	Pending    int                     `json:"pending"`
	Completed  int                     `json:"completed"`
	Urgent     int                     `json:"urgent"`
	Categories map[domain.Category]int `json:"categories"`
}

// Engine projects task lists into filtered, ordered views.
type Engine struct {
	now  func() time.Time
	loc  *time.Location
	lang language.Tag
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

// WithLanguage sets the collation language for title sorting.
func WithLanguage(tag language.Tag) Option {
	return func(e *Engine) {
		e.lang = tag
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		now:  time.Now,
		loc:  time.Local,
		lang: language.Und,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Project filters, searches and sorts tasks. The input slice is not modified.
func (e *Engine) Project(tasks []domain.Task, params Params) []domain.Task {
	now := e.now()
	advanced := !params.Advanced.IsZero()

	filtered := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		if !e.matchBasic(task, params.Basic, now) {
			continue
		}
		if advanced && !e.matchAdvanced(task, params.Advanced, now) {
			continue
		}
		if !matchSearch(task, params.Search) {
			continue
		}
		filtered = append(filtered, task.Clone())
	}

	e.sort(filtered, params.Sort)
	return filtered
}

// Count computes the badge counters.
func Count(tasks []domain.Task) Counts {
	counts := Counts{
		Total:      len(tasks),
		Categories: make(map[domain.Category]int, len(domain.Categories)),
	}
	for _, category := range domain.Categories {
		counts.Categories[category] = 0
	}
	for i := range tasks {
		switch tasks[i].Status {
		case domain.StatusPending:
			counts.Pending++
		case domain.StatusCompleted:
			counts.Completed++
		}
		if tasks[i].Category == domain.CategoryUrgent {
			counts.Urgent++
		}
		if _, known := counts.Categories[tasks[i].Category]; known {
			counts.Categories[tasks[i].Category]++
		}
	}
	return counts
}

func (e *Engine) matchBasic(task *domain.Task, filter BasicFilter, now time.Time) bool {
	switch filter {
	case "", FilterAll:
		return true
	case FilterPending:
		return task.Status == domain.StatusPending
	case FilterCompleted:
		return task.Status == domain.StatusCompleted
	case FilterUrgent:
		return task.Category == domain.CategoryUrgent
	case FilterOverdue:
		return task.IsOverdue(now)
	case FilterDueToday:
		return e.dueToday(task, now)
	case FilterHighPriority:
		return task.Priority == domain.PriorityHigh
	default:
		if category := domain.Category(filter); category.Valid() {
			return task.Category == category
		}
		return true
	}
}

func (e *Engine) matchAdvanced(task *domain.Task, f AdvancedFilter, now time.Time) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, task.Category) {
		return false
	}
	if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, task.Priority) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, task.Status) {
		return false
	}
	if len(f.Tags) > 0 && !task.HasTag(f.Tags...) {
		return false
	}
	if f.DueFrom != nil || f.DueTo != nil {
		if task.DueDate == nil {
			return false
		}
		if f.DueFrom != nil && task.DueDate.Before(*f.DueFrom) {
			return false
		}
		if f.DueTo != nil && task.DueDate.After(*f.DueTo) {
			return false
		}
	}
	if f.HasDescription != nil && *f.HasDescription && strings.TrimSpace(task.Description) == "" {
		return false
	}
	if f.IsOverdue != nil && *f.IsOverdue && !task.IsOverdue(now) {
		return false
	}
	return true
}

func (e *Engine) dueToday(task *domain.Task, now time.Time) bool {
	if task.DueDate == nil || task.IsCompleted() {
		return false
	}
	return analytics.SameDay(*task.DueDate, now, e.loc)
}

func matchSearch(task *domain.Task, term string) bool {
	if term == "" {
		return true
	}
	fold := cases.Fold()
	needle := fold.String(term)
	return strings.Contains(fold.String(task.Title), needle) ||
		strings.Contains(fold.String(task.Description), needle)
}

func (e *Engine) sort(tasks []domain.Task, key SortKey) {
	switch key {
	case SortTitle:
		collator := collate.New(e.lang)
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			return collator.CompareString(a.Title, b.Title)
		})
	case SortDueDate:
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			default:
				return a.DueDate.Compare(*b.DueDate)
			}
		})
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	default:
		slices.SortStableFunc(tasks, func(a, b domain.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}
