package tracker

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

const (
	DefaultTick = time.Second
	dateLayout  = "2006-01-02"
)

// TaskStore is the part of the task store the tracker needs.
type TaskStore interface {
	Get(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.Task, error)
}

// State is the tracker's run state.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// Snapshot is a point-in-time view of a tracker.
type Snapshot struct {
	TaskID   string               `json:"taskId"`
	State    State                `json:"state"`
	Elapsed  int64                `json:"elapsed"`
	Display  string               `json:"display"`
	Total    int64                `json:"total"`
	Sessions []domain.TimeSession `json:"sessions"`
}

type options struct {
	now    func() time.Time
	loc    *time.Location
	tick   time.Duration
	newID  func() string
	onTick func(taskID string, elapsed time.Duration)
}

type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocation sets the timezone of the session date field.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithTick sets the refresh cadence while running.
func WithTick(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tick = d
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// OnTick registers a callback invoked after every refresh while running.
// It runs on the ticker goroutine.
func OnTick(fn func(taskID string, elapsed time.Duration)) Option {
	return func(o *options) {
		o.onTick = fn
	}
}

func defaultOptions() options {
	return options{now: time.Now, loc: time.Local, tick: DefaultTick, newID: uuid.NewString}
}

// Tracker measures work on a single task. It moves between stopped and
// running; pausing keeps the elapsed time, stopping commits it as a session.
type Tracker struct {
	taskID string
	tasks  TaskStore
	repo   repository.SessionRepository
	logger *zap.Logger
	opts   options

	mu       sync.Mutex
	sessions []domain.TimeSession
	elapsed  time.Duration
	start    time.Time
	stop     chan struct{}
	closed   bool
}

// Open loads the session log of an existing task. The elapsed counter starts
// at zero; previously tracked time lives in the sessions.
func Open(ctx context.Context, tasks TaskStore, repo repository.SessionRepository, taskID string, logger *zap.Logger, opts ...Option) (*Tracker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := tasks.Get(ctx, taskID); err != nil {
		return nil, err
	}
	sessions, err := repo.LoadSessions(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading sessions of %s: %w", taskID, err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Tracker{
		taskID:   taskID,
		tasks:    tasks,
		repo:     repo,
		logger:   logger.With(zap.String("task_id", taskID)),
		opts:     o,
		sessions: sessions,
	}, nil
}

func (t *Tracker) TaskID() string {
	return t.taskID
}

// Start begins or resumes timing. The virtual start instant is placed
// elapsed-so-far in the past so the counter continues where it stopped.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.stop != nil {
		return
	}
	t.start = t.opts.now().Add(-t.elapsed)
	stop := make(chan struct{})
	t.stop = stop
	go t.run(stop, time.NewTicker(t.opts.tick))
	t.logger.Debug("tracker started", zap.Duration("elapsed", t.elapsed))
}

// Pause stops timing and keeps the elapsed time.
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.haltLocked()
}

// Stop halts timing and commits the elapsed time as a session when at least
// one whole second was measured. The elapsed counter is reset either way.
// A failed write keeps the session in memory and returns STORAGE_FAILURE.
func (t *Tracker) Stop(ctx context.Context) (*domain.TimeSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.haltLocked()
	seconds := int64(t.elapsed / time.Second)
	t.elapsed = 0
	if seconds <= 0 {
		return nil, nil
	}

	end := t.opts.now()
	session := domain.TimeSession{
		ID:        t.opts.newID(),
		TaskID:    t.taskID,
		StartTime: end.Add(-time.Duration(seconds) * time.Second),
		EndTime:   end,
		Duration:  seconds,
		Date:      end.In(t.opts.loc).Format(dateLayout),
	}
	t.sessions = append(t.sessions, session)

	if err := t.repo.SaveSessions(ctx, t.taskID, t.sessions); err != nil {
		t.logger.Error("failed to persist session log", zap.Error(err))
		return &session, domain.StorageFailure(err)
	}
	t.logger.Info("session recorded", zap.Int64("duration_seconds", seconds))
	return &session, nil
}

// Save writes the tracked total, in hours, to the task's actual time and
// closes the tracker. Uncommitted elapsed time is not included.
func (t *Tracker) Save(ctx context.Context) (*domain.Task, error) {
	t.mu.Lock()
	hours := domain.TotalHours(t.sessions)
	t.mu.Unlock()

	task, err := t.tasks.Update(ctx, t.taskID, domain.Patch{ActualTime: &hours})
	t.Close()
	if err != nil {
		return task, err
	}
	t.logger.Info("tracked time saved", zap.Float64("hours", hours))
	return task, nil
}

// DeleteSession removes one entry from the session log.
func (t *Tracker) DeleteSession(ctx context.Context, sessionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := slices.IndexFunc(t.sessions, func(s domain.TimeSession) bool { return s.ID == sessionID })
	if idx < 0 {
		return domain.ErrSessionNotFound
	}
	t.sessions = slices.Delete(t.sessions, idx, idx+1)
	if err := t.repo.SaveSessions(ctx, t.taskID, t.sessions); err != nil {
		t.logger.Error("failed to persist session log", zap.Error(err))
		return domain.StorageFailure(err)
	}
	return nil
}

// Sessions returns a copy of the session log.
func (t *Tracker) Sessions() []domain.TimeSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.sessions)
}

// Total is the sum of all committed sessions.
func (t *Tracker) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	var seconds int64
	for _, s := range t.sessions {
		seconds += s.Duration
	}
	return time.Duration(seconds) * time.Second
}

// Elapsed is the uncommitted time, whole seconds, derived from the clock
// while running.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		t.elapsed = t.sinceStartLocked()
	}
	return t.elapsed
}

func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func (t *Tracker) Snapshot() Snapshot {
	elapsed := t.Elapsed()
	state := StateStopped
	if t.Running() {
		state = StateRunning
	}
	sessions := t.Sessions()
	return Snapshot{
		TaskID:   t.taskID,
		State:    state,
		Elapsed:  int64(elapsed / time.Second),
		Display:  FormatDuration(elapsed),
		Total:    int64(t.Total() / time.Second),
		Sessions: sessions,
	}
}

// Close stops the ticker. Uncommitted elapsed time is discarded.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.haltLocked()
	t.elapsed = 0
	t.closed = true
}

func (t *Tracker) haltLocked() {
	if t.stop == nil {
		return
	}
	t.elapsed = t.sinceStartLocked()
	close(t.stop)
	t.stop = nil
	t.logger.Debug("tracker paused", zap.Duration("elapsed", t.elapsed))
}

func (t *Tracker) sinceStartLocked() time.Duration {
	d := t.opts.now().Sub(t.start).Truncate(time.Second)
	if d < 0 {
		return 0
	}
	return d
}

func (t *Tracker) run(stop chan struct{}, ticker *time.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stop != stop {
				t.mu.Unlock()
				return
			}
			t.elapsed = t.sinceStartLocked()
			elapsed := t.elapsed
			handler := t.opts.onTick
			t.mu.Unlock()

			if handler != nil {
				handler(t.taskID, elapsed)
			}
		}
	}
}

// FormatDuration renders d as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
