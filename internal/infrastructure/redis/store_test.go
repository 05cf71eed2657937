package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fastygo/taskflow/internal/config"
	"github.com/fastygo/taskflow/repository"
)

func TestNewStoreDefaultsPrefix(t *testing.T) {
	s := NewStore(nil, "")
	if got := s.key("smart-tasks"); got != "taskflow:smart-tasks" {
		t.Errorf("unexpected key %q", got)
	}
	if err := (*Store)(nil).Close(); err != nil {
		t.Errorf("closing a nil store should be a no-op, got %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	opts, err := clientOptions(config.RedisConfig{
		URL:      "redis://:secret@cache.internal:6380/2",
		Password: "override",
		Timeout:  1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("clientOptions failed: %v", err)
	}
	if opts.Addr != "cache.internal:6380" || opts.Password != "override" || opts.DB != 2 {
		t.Errorf("unexpected options addr=%s password=%s db=%d", opts.Addr, opts.Password, opts.DB)
	}
	if opts.DialTimeout != 1500*time.Millisecond || opts.ReadTimeout != opts.DialTimeout {
		t.Errorf("timeout not applied: dial=%v read=%v", opts.DialTimeout, opts.ReadTimeout)
	}

	opts, err = clientOptions(config.RedisConfig{URL: "redis://localhost:6379", DB: 4})
	if err != nil {
		t.Fatalf("clientOptions failed: %v", err)
	}
	if opts.DB != 4 || opts.DialTimeout != defaultTimeout {
		t.Errorf("expected db 4 and the default timeout, got db=%d dial=%v", opts.DB, opts.DialTimeout)
	}

	if _, err := clientOptions(config.RedisConfig{URL: "http://localhost"}); err == nil {
		t.Error("expected an error for a non-redis url")
	}
}

// TestStoreAgainstRedis needs a disposable database, e.g.
// TASKFLOW_TEST_REDIS_URL=redis://localhost:6379/15.
func TestStoreAgainstRedis(t *testing.T) {
	url := os.Getenv("TASKFLOW_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TASKFLOW_TEST_REDIS_URL not set")
	}
	s, err := Open(config.RedisConfig{URL: url, Prefix: "taskflow-test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, repository.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
	if err := s.Put(ctx, "app-settings", []byte(`{"theme":"dark"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value, err := s.Get(ctx, "app-settings")
	if err != nil || string(value) != `{"theme":"dark"}` {
		t.Errorf("unexpected value %q (%v)", value, err)
	}
	keys, err := s.Keys(ctx)
	if err != nil || len(keys) != 1 || keys[0] != "app-settings" {
		t.Errorf("unexpected keys %v (%v)", keys, err)
	}
	if size, err := s.Size(ctx); err != nil || size != 1 {
		t.Errorf("expected size 1, got %d (%v)", size, err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if keys, _ := s.Keys(ctx); len(keys) != 0 {
		t.Errorf("expected no keys after Clear, got %v", keys)
	}
}
