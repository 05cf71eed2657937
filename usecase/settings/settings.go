package settings

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

// Reloader is implemented by the task store.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Usage reports how much local storage the application occupies.
type Usage struct {
	Keys  int     `json:"keys"`
	Bytes int64   `json:"bytes"`
	KB    float64 `json:"kb"`
}

// Service owns user preferences and whole-store maintenance.
type Service struct {
	repo   repository.SettingsRepository
	store  repository.KeyValueStore
	tasks  Reloader
	logger *zap.Logger

	mu     sync.Mutex
	onWipe []func()
}

func NewService(repo repository.SettingsRepository, store repository.KeyValueStore, tasks Reloader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, store: store, tasks: tasks, logger: logger}
}

// OnWipe registers a callback run after a successful wipe, e.g. to forget
// session-scoped state.
func (s *Service) OnWipe(fn func()) {
	s.mu.Lock()
	s.onWipe = append(s.onWipe, fn)
	s.mu.Unlock()
}

// Load returns the saved settings merged over defaults. An unreadable entry
// is logged and replaced by the defaults.
func (s *Service) Load(ctx context.Context) domain.Settings {
	settings, err := s.repo.LoadSettings(ctx)
	if err != nil {
		s.logger.Warn("falling back to default settings", zap.Error(err))
		return domain.DefaultSettings()
	}
	return settings
}

// Update applies patch and persists the result.
func (s *Service) Update(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	if err := patch.Validate(); err != nil {
		return domain.Settings{}, err
	}
	settings := s.Load(ctx)
	patch.Apply(&settings)
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		s.logger.Error("failed to persist settings", zap.Error(err))
		return settings, domain.StorageFailure(err)
	}
	return settings, nil
}

// StorageUsage sums the size of every stored value.
func (s *Service) StorageUsage(ctx context.Context) (Usage, error) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("listing keys: %w", err)
	}
	usage := Usage{Keys: len(keys)}
	for _, key := range keys {
		value, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}
		usage.Bytes += int64(len(value))
	}
	usage.KB = math.Round(float64(usage.Bytes)/1024*100) / 100
	return usage, nil
}

// Wipe deletes every persisted entry and reloads the task store, which
// comes back empty.
func (s *Service) Wipe(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("failed to wipe storage", zap.Error(err))
		return domain.StorageFailure(err)
	}
	if err := s.tasks.Reload(ctx); err != nil {
		return fmt.Errorf("reloading after wipe: %w", err)
	}

	s.mu.Lock()
	hooks := append([]func(){}, s.onWipe...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	s.logger.Warn("all data wiped")
	return nil
}
