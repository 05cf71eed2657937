package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("APP_TIMEZONE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Driver != DriverBolt {
		t.Errorf("expected bolt driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Engine.SuggestionLimit != 3 {
		t.Errorf("expected suggestion limit 3, got %d", cfg.Engine.SuggestionLimit)
	}
	if cfg.Engine.TrackerTick != time.Second {
		t.Errorf("expected 1s tracker tick, got %v", cfg.Engine.TrackerTick)
	}
	if loc, _ := cfg.Location(); loc != time.Local {
		t.Errorf("expected local timezone, got %v", loc)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("RESYNC_INTERVAL_SECONDS", "45")
	t.Setenv("SUGGESTION_LIMIT", "5")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Resync.Interval != 45*time.Second {
		t.Errorf("expected 45s resync interval, got %v", cfg.Resync.Interval)
	}
	if cfg.Engine.SuggestionLimit != 5 {
		t.Errorf("expected limit 5, got %d", cfg.Engine.SuggestionLimit)
	}
	if loc, _ := cfg.Location(); loc != time.UTC {
		t.Errorf("expected UTC, got %v", loc)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
