package tracker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

// Manager keeps at most one open tracker per task.
type Manager struct {
	tasks  TaskStore
	repo   repository.SessionRepository
	logger *zap.Logger
	opts   []Option

	mu       sync.Mutex
	trackers map[string]*Tracker
}

func NewManager(tasks TaskStore, repo repository.SessionRepository, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		tasks:    tasks,
		repo:     repo,
		logger:   logger,
		opts:     opts,
		trackers: make(map[string]*Tracker),
	}
}

// Open returns the task's tracker, opening it on first use.
func (m *Manager) Open(ctx context.Context, taskID string) (*Tracker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.trackers[taskID]; ok {
		return t, nil
	}
	t, err := Open(ctx, m.tasks, m.repo, taskID, m.logger, m.opts...)
	if err != nil {
		return nil, err
	}
	m.trackers[taskID] = t
	return t, nil
}

// Save saves the tracked total and forgets the tracker.
func (m *Manager) Save(ctx context.Context, taskID string) (*domain.Task, error) {
	t, err := m.Open(ctx, taskID)
	if err != nil {
		return nil, err
	}
	task, err := t.Save(ctx)
	m.forget(taskID, t)
	return task, err
}

// Close discards the tracker of one task, if any.
func (m *Manager) Close(taskID string) {
	m.mu.Lock()
	t, ok := m.trackers[taskID]
	delete(m.trackers, taskID)
	m.mu.Unlock()
	if ok {
		t.Close()
	}
}

// Discard drops everything tracked for a deleted task: the open tracker,
// including uncommitted time, and the stored session log.
func (m *Manager) Discard(ctx context.Context, taskID string) error {
	m.Close(taskID)
	if err := m.repo.DeleteSessions(ctx, taskID); err != nil {
		m.logger.Error("failed to delete session log", zap.String("task_id", taskID), zap.Error(err))
		return domain.StorageFailure(err)
	}
	return nil
}

// CloseAll stops every tracker. Running timers lose their uncommitted time.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	trackers := m.trackers
	m.trackers = make(map[string]*Tracker)
	m.mu.Unlock()

	for id, t := range trackers {
		if t.Running() {
			m.logger.Warn("closing running tracker", zap.String("task_id", id))
		}
		t.Close()
	}
}

// Running lists the ids of tasks whose timer is running.
func (m *Manager) Running() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, t := range m.trackers {
		if t.Running() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m *Manager) forget(taskID string, t *Tracker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trackers[taskID] == t {
		delete(m.trackers, taskID)
	}
}
