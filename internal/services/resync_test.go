package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeFlusher struct {
	mu      sync.Mutex
	dirty   bool
	fails   int
	flushes int
}

func (f *fakeFlusher) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

func (f *fakeFlusher) Flush(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	if f.fails > 0 {
		f.fails--
		return errors.New("disk full")
	}
	f.dirty = false
	return nil
}

type staticHealth bool

func (s staticHealth) IsOnline() bool { return bool(s) }

func TestRunOnceSkipsCleanStore(t *testing.T) {
	store := &fakeFlusher{}
	r := NewResync(store, nil, nil, ResyncConfig{Interval: time.Minute})

	flushed, err := r.RunOnce(context.Background())
	if err != nil || flushed || store.flushes != 0 {
		t.Errorf("clean store must not be flushed: %v %v %d", flushed, err, store.flushes)
	}
}

func TestRunOnceRetriesUntilStorageAccepts(t *testing.T) {
	store := &fakeFlusher{dirty: true, fails: 1}
	r := NewResync(store, staticHealth(true), nil, ResyncConfig{Interval: time.Minute})

	if _, err := r.RunOnce(context.Background()); err == nil {
		t.Fatal("expected the first flush to fail")
	}
	flushed, err := r.RunOnce(context.Background())
	if err != nil || !flushed {
		t.Fatalf("expected second flush to succeed: %v %v", flushed, err)
	}
	if store.Dirty() || store.flushes != 2 {
		t.Errorf("unexpected store state dirty=%v flushes=%d", store.Dirty(), store.flushes)
	}
}

func TestRunOnceWaitsForStorage(t *testing.T) {
	store := &fakeFlusher{dirty: true}
	r := NewResync(store, staticHealth(false), nil, ResyncConfig{})

	if flushed, _ := r.RunOnce(context.Background()); flushed || store.flushes != 0 {
		t.Error("offline storage must not be written to")
	}
}

func TestStopMakesFinalAttempt(t *testing.T) {
	store := &fakeFlusher{dirty: true}
	r := NewResync(store, nil, nil, ResyncConfig{Interval: time.Hour})
	r.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if store.Dirty() {
		t.Error("stop should flush a dirty store")
	}
}
