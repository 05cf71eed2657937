package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/repository"
)

// StoreState is the task store view the monitor reports on.
type StoreState interface {
	Len() int
	Dirty() bool
}

// Sizer is implemented by stores that can count their entries.
type Sizer interface {
	Size(ctx context.Context) (int, error)
}

type Monitor struct {
	driver string
	kv     repository.KeyValueStore
	tasks  StoreState

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(driver string, kv repository.KeyValueStore, tasks StoreState, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		driver:   driver,
		kv:       kv,
		tasks:    tasks,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the last storage ping succeeded.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh checks storage immediately and returns the new status.
func (m *Monitor) Refresh() Status {
	online, entries := m.checkStorage()
	status := Status{
		Driver:    m.driver,
		Storage:   online,
		Entries:   entries,
		LastCheck: time.Now(),
	}
	if m.tasks != nil {
		status.Tasks = m.tasks.Len()
		status.Dirty = m.tasks.Dirty()
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if previous.Storage && !status.Storage {
		m.logger.Warn("storage unreachable", zap.String("driver", m.driver))
	}
	if !previous.Dirty && status.Dirty {
		m.logger.Warn("task store has unsaved changes", zap.Int("tasks", status.Tasks))
	}
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) checkStorage() (bool, int) {
	if m.kv == nil {
		return false, 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.kv.Ping(ctx); err != nil {
		m.logger.Debug("storage ping failed", zap.Error(err))
		return false, 0
	}
	sizer, ok := m.kv.(Sizer)
	if !ok {
		return true, 0
	}
	size, err := sizer.Size(ctx)
	if err != nil {
		m.logger.Warn("storage size check failed", zap.Error(err))
	}
	return true, size
}
