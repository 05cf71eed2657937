package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/infrastructure/bolt"
	"github.com/fastygo/taskflow/repository/kv"
	"github.com/fastygo/taskflow/usecase/task"
)

type env struct {
	store    *bolt.Store
	tasks    *task.Store
	settings *Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "tasks.db"), "")
	if err != nil {
		t.Fatalf("bolt.Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tasks, err := task.New(context.Background(), kv.NewTaskRepository(store), nil)
	if err != nil {
		t.Fatalf("task.New failed: %v", err)
	}
	return &env{
		store:    store,
		tasks:    tasks,
		settings: NewService(kv.NewSettingsRepository(store), store, tasks, nil),
	}
}

func TestLoadReturnsDefaults(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	if got := e.settings.Load(context.Background()); got != domain.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestLoadMergesPartialEntry(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	if err := e.store.Put(ctx, kv.KeySettings, []byte(`{"theme":"dark","reminderTime":10,"defaultPriority":"urgent"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got := e.settings.Load(ctx)
	want := domain.DefaultSettings()
	want.Theme = "dark"
	want.ReminderTime = 10
	if got != want {
		t.Errorf("want %+v, got %+v", want, got)
	}
}

func TestUpdatePersists(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	category := domain.CategoryWork
	off := false
	if _, err := e.settings.Update(ctx, domain.SettingsPatch{DefaultCategory: &category, Notifications: &off}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got := e.settings.Load(ctx)
	if got.DefaultCategory != domain.CategoryWork || got.Notifications || !got.AutoSave {
		t.Errorf("unexpected settings %+v", got)
	}

	bad := "neon"
	if _, err := e.settings.Update(ctx, domain.SettingsPatch{Theme: &bad}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("expected INVALID for unknown theme, got %v", err)
	}
	hours := domain.WorkingHours{Start: "9am", End: "17:00"}
	if _, err := e.settings.Update(ctx, domain.SettingsPatch{WorkingHours: &hours}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("expected INVALID for malformed hours, got %v", err)
	}
}

func TestStorageUsageAndWipe(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.tasks.Create(ctx, domain.Draft{Title: "Water plants"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.store.Put(ctx, kv.SessionKey("x"), make([]byte, 2048)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	usage, err := e.settings.StorageUsage(ctx)
	if err != nil {
		t.Fatalf("StorageUsage failed: %v", err)
	}
	if usage.Keys != 3 || usage.Bytes <= 2048 || usage.KB <= 2 {
		t.Errorf("unexpected usage %+v", usage)
	}

	wiped := false
	e.settings.OnWipe(func() { wiped = true })
	if err := e.settings.Wipe(ctx); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}
	if e.tasks.Len() != 0 || e.tasks.Analytics() != nil {
		t.Error("task store should be empty after a wipe")
	}
	if keys, _ := e.store.Keys(ctx); len(keys) != 0 {
		t.Errorf("expected no keys after wipe, got %v", keys)
	}
	if !wiped {
		t.Error("wipe hooks were not run")
	}
}
