package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ConnectionHealth abstracts the storage monitor.
type ConnectionHealth interface {
	IsOnline() bool
}

// Flusher is the task store view the resync job drives.
type Flusher interface {
	Dirty() bool
	Flush(ctx context.Context) error
}

// ResyncConfig controls how often a dirty store is written again.
type ResyncConfig struct {
	Interval time.Duration
}

// Resync retries durable writes that failed. A failed write leaves the task
// store dirty; every tick the whole in-memory state is flushed again until
// storage accepts it.
type Resync struct {
	store    Flusher
	monitor  ConnectionHealth
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ResyncConfig
	attempts atomic.Int64
}

func NewResync(store Flusher, monitor ConnectionHealth, logger *zap.Logger, cfg ResyncConfig) *Resync {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Resync{
		store:   store,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	seconds := int(cfg.Interval.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	schedule := fmt.Sprintf("@every %ds", seconds)
	_, _ = r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("resync failed", zap.Int64("attempts", r.attempts.Load()), zap.Error(err))
		}
	})

	return r
}

// Start launches the cron scheduler.
func (r *Resync) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("resync started", zap.Duration("interval", r.cfg.Interval))
}

// Stop waits for a running job, then makes a final flush attempt so a dirty
// store gets one more chance before the process exits.
func (r *Resync) Stop(ctx context.Context) error {
	if r == nil || r.cron == nil {
		return nil
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	_, err := r.RunOnce(ctx)
	r.logger.Info("resync stopped")
	return err
}

// RunOnce flushes the store when it is dirty and storage is reachable. It
// reports whether a flush happened.
func (r *Resync) RunOnce(ctx context.Context) (bool, error) {
	if r == nil || r.store == nil || !r.store.Dirty() {
		return false, nil
	}
	if r.monitor != nil && !r.monitor.IsOnline() {
		r.logger.Debug("skipping resync (storage offline)")
		return false, nil
	}

	r.attempts.Add(1)
	if err := r.store.Flush(ctx); err != nil {
		return false, err
	}
	r.logger.Info("dirty state flushed", zap.Int64("attempts", r.attempts.Swap(0)))
	return true, nil
}
