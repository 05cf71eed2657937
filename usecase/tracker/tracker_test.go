package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fastygo/taskflow/domain"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeTasks struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
}

func (f *fakeTasks) Get(_ context.Context, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (f *fakeTasks) Update(_ context.Context, id string, patch domain.Patch) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	patch.Apply(&task, time.Now())
	f.tasks[id] = task
	return &task, nil
}

type memorySessions struct {
	mu   sync.Mutex
	logs map[string][]domain.TimeSession
	fail error
	puts int
}

func (m *memorySessions) LoadSessions(_ context.Context, taskID string) ([]domain.TimeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TimeSession{}, m.logs[taskID]...), nil
}

func (m *memorySessions) SaveSessions(_ context.Context, taskID string, sessions []domain.TimeSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.puts++
	m.logs[taskID] = append([]domain.TimeSession{}, sessions...)
	return nil
}

func (m *memorySessions) DeleteSessions(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logs, taskID)
	return nil
}

type fixture struct {
	clock    *manualClock
	tasks    *fakeTasks
	sessions *memorySessions
}

func newFixture() *fixture {
	return &fixture{
		clock: &manualClock{now: time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC)},
		tasks: &fakeTasks{tasks: map[string]domain.Task{
			"t1": {ID: "t1", Title: "Write report", Status: domain.StatusPending},
		}},
		sessions: &memorySessions{logs: map[string][]domain.TimeSession{}},
	}
}

func (f *fixture) open(t *testing.T, opts ...Option) *Tracker {
	t.Helper()
	seq := 0
	base := []Option{
		WithClock(f.clock.Now),
		WithLocation(time.UTC),
		WithTick(time.Hour),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("session-%d", seq)
		}),
	}
	tr, err := Open(context.Background(), f.tasks, f.sessions, "t1", nil, append(base, opts...)...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(tr.Close)
	return tr
}

func TestPauseKeepsElapsedAndResumeContinues(t *testing.T) {
	t.Parallel()
	f := newFixture()
	tr := f.open(t)

	tr.Start()
	if !tr.Running() {
		t.Fatal("expected tracker to be running")
	}
	f.clock.Advance(5 * time.Second)
	tr.Pause()
	if got := tr.Elapsed(); got != 5*time.Second {
		t.Fatalf("expected 5s after pause, got %v", got)
	}

	f.clock.Advance(10 * time.Second)
	if got := tr.Elapsed(); got != 5*time.Second {
		t.Fatalf("paused tracker must not advance, got %v", got)
	}

	tr.Start()
	f.clock.Advance(3*time.Second + 400*time.Millisecond)
	if got := tr.Elapsed(); got != 8*time.Second {
		t.Fatalf("expected resumed counter at 8s, got %v", got)
	}

	session, err := tr.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if session == nil || session.Duration != 8 || session.ID != "session-1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if want := f.clock.Now().Add(-8 * time.Second); !session.StartTime.Equal(want) {
		t.Errorf("expected start %v, got %v", want, session.StartTime)
	}
	if session.Date != "2024-03-10" {
		t.Errorf("unexpected session date %q", session.Date)
	}
	if tr.Elapsed() != 0 || tr.Running() {
		t.Error("stop must reset the counter and halt the timer")
	}
	if logged := f.sessions.logs["t1"]; len(logged) != 1 || logged[0].Duration != 8 {
		t.Errorf("session log not persisted: %+v", logged)
	}
}

func TestStopWithoutElapsedRecordsNothing(t *testing.T) {
	t.Parallel()
	f := newFixture()
	tr := f.open(t)

	tr.Start()
	f.clock.Advance(500 * time.Millisecond)
	session, err := tr.Stop(context.Background())
	if err != nil || session != nil {
		t.Fatalf("expected no session, got %+v, %v", session, err)
	}
	if f.sessions.puts != 0 {
		t.Errorf("nothing should be written, got %d writes", f.sessions.puts)
	}
}

func TestSaveWritesActualTimeAndCloses(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.sessions.logs["t1"] = []domain.TimeSession{{ID: "old", Duration: 3600}}
	tr := f.open(t)

	tr.Start()
	f.clock.Advance(30 * time.Minute)
	if _, err := tr.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if tr.Total() != 90*time.Minute {
		t.Fatalf("expected 90m total, got %v", tr.Total())
	}

	task, err := tr.Save(context.Background())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if task.ActualTime != 1.5 {
		t.Errorf("expected 1.5h actual time, got %v", task.ActualTime)
	}

	tr.Start()
	if tr.Running() {
		t.Error("a saved tracker must stay closed")
	}
}

func TestOpenUnknownTask(t *testing.T) {
	t.Parallel()
	f := newFixture()
	_, err := Open(context.Background(), f.tasks, f.sessions, "missing", nil)
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.sessions.logs["t1"] = []domain.TimeSession{{ID: "a", Duration: 60}, {ID: "b", Duration: 120}}
	tr := f.open(t)

	if err := tr.DeleteSession(context.Background(), "zzz"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
	if err := tr.DeleteSession(context.Background(), "a"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if got := f.sessions.logs["t1"]; len(got) != 1 || got[0].ID != "b" {
		t.Errorf("unexpected persisted log %+v", got)
	}
	if tr.Total() != 2*time.Minute {
		t.Errorf("unexpected total %v", tr.Total())
	}
}

func TestStopStorageFailureKeepsSession(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.sessions.fail = errors.New("quota exceeded")
	tr := f.open(t)

	tr.Start()
	f.clock.Advance(42 * time.Second)
	session, err := tr.Stop(context.Background())
	if !domain.IsDomainError(err, domain.ErrCodeStorage) {
		t.Fatalf("expected STORAGE_FAILURE, got %v", err)
	}
	if session == nil || len(tr.Sessions()) != 1 {
		t.Error("the session must stay in memory after a failed write")
	}
}

func TestTicksReportClockDerivedElapsed(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ticks := make(chan time.Duration, 16)
	tr := f.open(t, WithTick(5*time.Millisecond), OnTick(func(_ string, elapsed time.Duration) {
		select {
		case ticks <- elapsed:
		default:
		}
	}))

	tr.Start()
	f.clock.Advance(2 * time.Second)
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ticks:
			if got == 2*time.Second {
				tr.Pause()
				return
			}
		case <-deadline:
			t.Fatal("no tick with the advanced clock received")
		}
	}
}

func TestManagerReusesTrackers(t *testing.T) {
	t.Parallel()
	f := newFixture()
	m := NewManager(f.tasks, f.sessions, nil, WithClock(f.clock.Now), WithTick(time.Hour))
	defer m.CloseAll()

	first, err := m.Open(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	second, _ := m.Open(context.Background(), "t1")
	if first != second {
		t.Fatal("expected the same tracker for the same task")
	}

	first.Start()
	if ids := m.Running(); len(ids) != 1 || ids[0] != "t1" {
		t.Errorf("unexpected running set %v", ids)
	}
	if _, err := m.Save(context.Background(), "t1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	third, _ := m.Open(context.Background(), "t1")
	if third == first {
		t.Error("a saved tracker should be replaced on the next open")
	}
}

func TestManagerDiscardDropsTrackerAndLog(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.sessions.logs["t1"] = []domain.TimeSession{{ID: "old", TaskID: "t1", Duration: 60}}
	m := NewManager(f.tasks, f.sessions, nil, WithClock(f.clock.Now), WithTick(time.Hour))
	defer m.CloseAll()

	tr, err := m.Open(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	tr.Start()
	f.clock.Advance(90 * time.Second)

	if err := m.Discard(context.Background(), "t1"); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if ids := m.Running(); len(ids) != 0 {
		t.Errorf("expected no running trackers, got %v", ids)
	}
	if _, ok := f.sessions.logs["t1"]; ok {
		t.Error("session log should be deleted")
	}
	if session, _ := tr.Stop(context.Background()); session != nil {
		t.Errorf("a discarded tracker must not record a session, got %+v", session)
	}
	if _, ok := f.sessions.logs["t1"]; ok {
		t.Error("stopping a discarded tracker rewrote the session log")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{100 * time.Hour, "100:00:00"},
		{-time.Second, "00:00:00"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v): want %q, got %q", tc.in, tc.want, got)
		}
	}
}
