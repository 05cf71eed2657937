// Package app assembles the engine shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/internal/config"
	"github.com/fastygo/taskflow/internal/infrastructure/monitor"
	"github.com/fastygo/taskflow/internal/infrastructure/storage"
	"github.com/fastygo/taskflow/internal/interchange"
	"github.com/fastygo/taskflow/internal/services"
	"github.com/fastygo/taskflow/repository"
	"github.com/fastygo/taskflow/repository/kv"
	"github.com/fastygo/taskflow/usecase/query"
	settingsUC "github.com/fastygo/taskflow/usecase/settings"
	"github.com/fastygo/taskflow/usecase/suggest"
	taskUC "github.com/fastygo/taskflow/usecase/task"
	"github.com/fastygo/taskflow/usecase/tracker"
)

// App holds every long-lived component. Background workers (monitor,
// resync) are created but not started; the caller decides.
type App struct {
	Config    *config.Config
	Location  *time.Location
	KV        repository.KeyValueStore
	Sessions  repository.SessionRepository
	Tasks     *taskUC.Store
	Settings  *settingsUC.Service
	Query     *query.Engine
	Suggest   *suggest.Engine
	Dismissed *suggest.Dismissed
	Trackers  *tracker.Manager
	Codec     *interchange.Codec
	Monitor   *monitor.Monitor
	Resync    *services.Resync
	Logger    *zap.Logger
}

// Build opens storage and loads the task store.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolving timezone: %w", err)
	}

	store, err := storage.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	tasks, err := taskUC.New(ctx, kv.NewTaskRepository(store), logger.Named("tasks"), taskUC.WithLocation(loc))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	a := &App{
		Config:    cfg,
		Location:  loc,
		KV:        store,
		Sessions:  kv.NewSessionRepository(store),
		Tasks:     tasks,
		Query:     query.New(query.WithLocation(loc)),
		Suggest:   suggest.New(suggest.WithLocation(loc), suggest.WithLimit(cfg.Engine.SuggestionLimit)),
		Dismissed: suggest.NewDismissed(),
		Codec:     interchange.New(),
		Logger:    logger,
	}
	a.Trackers = tracker.NewManager(tasks, a.Sessions, logger.Named("tracker"),
		tracker.WithLocation(loc), tracker.WithTick(cfg.Engine.TrackerTick))
	a.Settings = settingsUC.NewService(kv.NewSettingsRepository(store), store, tasks, logger.Named("settings"))
	a.Settings.OnWipe(a.Dismissed.Clear)
	a.Settings.OnWipe(a.Trackers.CloseAll)

	a.Monitor = monitor.New(cfg.Storage.Driver, store, tasks, cfg.Storage.MonitorInterval, logger.Named("monitor"))
	a.Resync = services.NewResync(tasks, a.Monitor, logger.Named("resync"), services.ResyncConfig{
		Interval: cfg.Resync.Interval,
	})
	return a, nil
}

// Close stops trackers, gives pending writes a last chance and closes storage.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	a.Trackers.CloseAll()
	if a.Tasks.Dirty() {
		if err := a.Tasks.Flush(ctx); err != nil {
			a.Logger.Error("unsaved changes lost", zap.Error(err))
		}
	}
	return a.KV.Close()
}
