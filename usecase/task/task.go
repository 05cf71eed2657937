package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
	"github.com/fastygo/taskflow/usecase/analytics"
)

// Store is the single source of truth for tasks. It keeps the collection in
// memory, writes it through to durable storage on every mutation and
// recomputes the analytics snapshot at the same time.
//
// A failed durable write is reported as a STORAGE_FAILURE error, but the
// in-memory change is kept and the store is marked dirty until Flush
// succeeds.
type Store struct {
	repo   repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
	loc    *time.Location

	mu        sync.RWMutex
	tasks     []domain.Task
	analytics *domain.Analytics
	dirty     bool
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLocation sets the timezone used for calendar-day analytics.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New loads the persisted tasks and analytics snapshot.
func New(ctx context.Context, repo repository.TaskRepository, logger *zap.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory state with what is durably stored.
func (s *Store) Reload(ctx context.Context) error {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	snapshot, err := s.repo.LoadAnalytics(ctx)
	if err != nil {
		s.logger.Warn("discarding unreadable analytics snapshot", zap.Error(err))
		snapshot = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	s.analytics = snapshot
	s.dirty = false
	s.logger.Debug("tasks loaded", zap.Int("count", len(tasks)))
	return nil
}

// Create validates the draft, appends a new pending task and persists.
func (s *Store) Create(ctx context.Context, draft domain.Draft) (*domain.Task, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task := domain.Task{
		ID:            s.newID(),
		Title:         strings.TrimSpace(draft.Title),
		Description:   draft.Description,
		Category:      draft.Category,
		Priority:      draft.Priority,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		EstimatedTime: draft.EstimatedTime,
		Tags:          append([]string{}, draft.Tags...),
	}
	if draft.DueDate != nil {
		due := *draft.DueDate
		task.DueDate = &due
	}
	if task.Category == "" {
		task.Category = domain.CategoryPersonal
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}

	s.tasks = append(s.tasks, task)
	out := task.Clone()
	if err := s.persistLocked(ctx, now); err != nil {
		return &out, err
	}
	s.logger.Info("task created", zap.String("task_id", task.ID))
	return &out, nil
}

// Update merges patch over the task with the given id.
func (s *Store) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, domain.ErrTaskNotFound
	}

	now := s.now()
	task := s.tasks[idx].Clone()
	patch.Apply(&task, now)
	task.UpdatedAt = s.updatedAt(task.CreatedAt, now)
	s.tasks[idx] = task

	out := task.Clone()
	if err := s.persistLocked(ctx, now); err != nil {
		return &out, err
	}
	s.logger.Debug("task updated", zap.String("task_id", id))
	return &out, nil
}

// Delete removes the task. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx >= 0 {
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	}
	if err := s.persistLocked(ctx, s.now()); err != nil {
		return err
	}
	if idx >= 0 {
		s.logger.Info("task deleted", zap.String("task_id", id))
	}
	return nil
}

// ToggleCompletion flips a task between completed and pending. Any status
// other than completed, in_progress included, becomes completed.
func (s *Store) ToggleCompletion(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, domain.ErrTaskNotFound
	}

	now := s.now()
	task := s.tasks[idx].Clone()
	if task.IsCompleted() {
		task.SetStatus(domain.StatusPending, now)
	} else {
		task.CompletedAt = nil
		task.SetStatus(domain.StatusCompleted, now)
	}
	task.UpdatedAt = s.updatedAt(task.CreatedAt, now)
	s.tasks[idx] = task

	out := task.Clone()
	if err := s.persistLocked(ctx, now); err != nil {
		return &out, err
	}
	return &out, nil
}

// Get returns a copy of one task.
func (s *Store) Get(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, domain.ErrTaskNotFound
	}
	out := s.tasks[idx].Clone()
	return &out, nil
}

// List returns a copy of every task in persisted order.
func (s *Store) List(_ context.Context) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, len(s.tasks))
	for i := range s.tasks {
		out[i] = s.tasks[i].Clone()
	}
	return out
}

// Analytics returns the last computed snapshot, or nil when none exists yet.
func (s *Store) Analytics() *domain.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.analytics == nil {
		return nil
	}
	out := *s.analytics
	out.CategoryDistribution = make(map[domain.Category]int, len(s.analytics.CategoryDistribution))
	for k, v := range s.analytics.CategoryDistribution {
		out.CategoryDistribution[k] = v
	}
	out.CompletionTrends = append([]domain.TrendPoint(nil), s.analytics.CompletionTrends...)
	return &out
}

// Insights derives dashboard figures from the current tasks.
func (s *Store) Insights() domain.Insights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analytics.ComputeInsights(s.tasks, s.now(), s.loc)
}

// Import appends decoded records. Records get a fresh id when theirs is
// empty or already taken, and defaults for missing fields.
func (s *Store) Import(ctx context.Context, records []domain.Task) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	seen := make(map[string]struct{}, len(s.tasks)+len(records))
	for i := range s.tasks {
		seen[s.tasks[i].ID] = struct{}{}
	}

	imported := make([]domain.Task, 0, len(records))
	for i, record := range records {
		task := record.Clone()
		if _, taken := seen[task.ID]; task.ID == "" || taken {
			task.ID = s.newID()
		}
		seen[task.ID] = struct{}{}
		normalizeImported(&task, i, now)
		s.tasks = append(s.tasks, task)
		imported = append(imported, task.Clone())
	}

	if err := s.persistLocked(ctx, now); err != nil {
		return imported, err
	}
	s.logger.Info("tasks imported", zap.Int("count", len(imported)))
	return imported, nil
}

// Flush writes the in-memory state again. It is how a dirty store recovers.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx, s.now())
}

// Dirty reports whether the last durable write failed.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Location is the timezone used for calendar-day calculations.
func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) persistLocked(ctx context.Context, now time.Time) error {
	snapshot := analytics.Compute(s.tasks, now, s.loc)
	s.analytics = &snapshot

	if err := s.repo.SaveTasks(ctx, s.tasks); err != nil {
		s.dirty = true
		s.logger.Error("failed to persist tasks", zap.Int("count", len(s.tasks)), zap.Error(err))
		return domain.StorageFailure(err)
	}
	if err := s.repo.SaveAnalytics(ctx, snapshot); err != nil {
		s.dirty = true
		s.logger.Error("failed to persist analytics", zap.Error(err))
		return domain.StorageFailure(err)
	}
	if s.dirty {
		s.logger.Info("storage recovered, state flushed")
	}
	s.dirty = false
	return nil
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// updatedAt never lets a clock step backwards break updatedAt >= createdAt.
func (s *Store) updatedAt(created, now time.Time) time.Time {
	if now.Before(created) {
		return created
	}
	return now
}

func normalizeImported(task *domain.Task, index int, now time.Time) {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		task.Title = fmt.Sprintf("Imported Task %d", index+1)
	}
	if !task.Category.Valid() {
		task.Category = domain.CategoryPersonal
	}
	if !task.Priority.Valid() {
		task.Priority = domain.PriorityMedium
	}
	if !task.Status.Valid() {
		task.Status = domain.StatusPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
	}
	if task.EstimatedTime < 0 {
		task.EstimatedTime = 0
	}
	if task.ActualTime < 0 {
		task.ActualTime = 0
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	completedAt := task.CompletedAt
	task.CompletedAt = nil
	if task.Status == domain.StatusCompleted {
		if completedAt == nil {
			completedAt = &task.UpdatedAt
		}
		task.SetStatus(domain.StatusCompleted, *completedAt)
	}
}
