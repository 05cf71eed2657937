package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by storage.Open.
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	Timezone    string
	HTTP        HTTPConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Resync      ResyncConfig
	Engine      EngineConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodySize  int
}

type StorageConfig struct {
	Driver          string
	BoltPath        string
	BoltBucket      string
	SQLitePath      string
	MonitorInterval time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	Prefix   string
	Timeout  time.Duration
}

type ResyncConfig struct {
	Interval time.Duration
}

type EngineConfig struct {
	SuggestionLimit int
	TrackerTick     time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the tools work without any setup.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskflow"),
		Environment: getString("APP_ENV", "development"),
		Timezone:    getString("APP_TIMEZONE", "Local"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "127.0.0.1"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxBodySize:  getInt("SERVER_MAX_BODY_SIZE", 8<<20),
		},
		Storage: StorageConfig{
			Driver:          getString("STORAGE_DRIVER", DriverBolt),
			BoltPath:        getString("BOLTDB_PATH", "./data/taskflow.db"),
			BoltBucket:      getString("BOLTDB_BUCKET", "taskflow"),
			SQLitePath:      getString("SQLITE_PATH", "./data/taskflow.sqlite"),
			MonitorInterval: getDuration("MONITOR_INTERVAL_SECONDS", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			Prefix:   getString("REDIS_PREFIX", "taskflow:"),
			Timeout:  getDuration("REDIS_TIMEOUT", 5*time.Second),
		},
		Resync: ResyncConfig{
			Interval: getDuration("RESYNC_INTERVAL_SECONDS", 30*time.Second),
		},
		Engine: EngineConfig{
			SuggestionLimit: getInt("SUGGESTION_LIMIT", 3),
			TrackerTick:     getDuration("TRACKER_TICK", time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	switch cfg.Storage.Driver {
	case DriverBolt, DriverSQLite, DriverRedis:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Location resolves the timezone used for calendar-day calculations.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
