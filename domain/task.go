package domain

import (
	"strings"
	"time"
)

// Category groups tasks by life area.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryUrgent   Category = "urgent"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryUrgent, CategoryHealth, CategoryLearning}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority expresses task importance.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities: high=3, medium=2, low=1, unknown=0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Status is the task lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Task represents a personal to-do item.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      Category   `json:"category"`
	Priority      Priority   `json:"priority"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DueDate       *time.Time `json:"dueDate"`
	CompletedAt   *time.Time `json:"completedAt"`
	EstimatedTime float64    `json:"estimatedTime"`
	ActualTime    float64    `json:"actualTime"`
	Tags          []string   `json:"tags"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsOverdue reports whether the task is past due at the given instant.
func (t *Task) IsOverdue(reference time.Time) bool {
	if t == nil || t.DueDate == nil || t.IsCompleted() {
		return false
	}
	return t.DueDate.Before(reference)
}

// HasTag reports whether the task carries any of the provided tags.
func (t *Task) HasTag(tags ...string) bool {
	for _, want := range tags {
		for _, have := range t.Tags {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// SetStatus changes the status and keeps CompletedAt in step with it.
func (t *Task) SetStatus(status Status, at time.Time) {
	t.Status = status
	if status == StatusCompleted {
		if t.CompletedAt == nil {
			completed := at
			t.CompletedAt = &completed
		}
		return
	}
	t.CompletedAt = nil
}

// Clone returns a deep copy so callers never share pointers with the store.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		out.CompletedAt = &completed
	}
	if t.Tags != nil {
		out.Tags = make([]string, len(t.Tags))
		copy(out.Tags, t.Tags)
	}
	return out
}

// Draft carries the user-provided fields of a new task.
type Draft struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      Category   `json:"category"`
	Priority      Priority   `json:"priority"`
	DueDate       *time.Time `json:"dueDate"`
	EstimatedTime float64    `json:"estimatedTime"`
	Tags          []string   `json:"tags"`
}

// Validate rejects drafts that must never reach the store.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return Invalidf("title is required")
	}
	if d.EstimatedTime < 0 {
		return Invalidf("estimated time must not be negative")
	}
	if d.Category != "" && !d.Category.Valid() {
		return Invalidf("unknown category %q", d.Category)
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return Invalidf("unknown priority %q", d.Priority)
	}
	return nil
}

// Patch describes a partial update; nil fields are left untouched.
type Patch struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Category      *Category  `json:"category,omitempty"`
	Priority      *Priority  `json:"priority,omitempty"`
	Status        *Status    `json:"status,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	ClearDueDate  bool       `json:"clearDueDate,omitempty"`
	EstimatedTime *float64   `json:"estimatedTime,omitempty"`
	ActualTime    *float64   `json:"actualTime,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
}

func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Invalidf("title is required")
	}
	if p.EstimatedTime != nil && *p.EstimatedTime < 0 {
		return Invalidf("estimated time must not be negative")
	}
	if p.ActualTime != nil && *p.ActualTime < 0 {
		return Invalidf("actual time must not be negative")
	}
	if p.Category != nil && !p.Category.Valid() {
		return Invalidf("unknown category %q", *p.Category)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return Invalidf("unknown priority %q", *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return Invalidf("unknown status %q", *p.Status)
	}
	return nil
}

// Apply merges the patch over task. UpdatedAt is the caller's concern.
func (p Patch) Apply(task *Task, at time.Time) {
	if p.Title != nil {
		task.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Category != nil {
		task.Category = *p.Category
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.ClearDueDate {
		task.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		task.DueDate = &due
	}
	if p.EstimatedTime != nil {
		task.EstimatedTime = *p.EstimatedTime
	}
	if p.ActualTime != nil {
		task.ActualTime = *p.ActualTime
	}
	if p.Tags != nil {
		task.Tags = append([]string(nil), p.Tags...)
	}
	if p.Status != nil {
		task.SetStatus(*p.Status, at)
	}
}
