package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/internal/config"
	"github.com/fastygo/taskflow/internal/infrastructure/bolt"
	redisInfra "github.com/fastygo/taskflow/internal/infrastructure/redis"
	"github.com/fastygo/taskflow/internal/infrastructure/sqlite"
	"github.com/fastygo/taskflow/repository"
)

// Open returns the key-value store selected by cfg.Storage.Driver.
func Open(cfg *config.Config, logger *zap.Logger) (repository.KeyValueStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Storage.Driver {
	case config.DriverBolt, "":
		store, err := bolt.Open(cfg.Storage.BoltPath, cfg.Storage.BoltBucket)
		if err != nil {
			return nil, fmt.Errorf("opening bolt store: %w", err)
		}
		logger.Info("storage opened", zap.String("driver", config.DriverBolt), zap.String("path", cfg.Storage.BoltPath))
		return store, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Info("storage opened", zap.String("driver", config.DriverSQLite), zap.String("path", cfg.Storage.SQLitePath))
		return store, nil

	case config.DriverRedis:
		store, err := redisInfra.Open(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("storage opened", zap.String("driver", config.DriverRedis), zap.String("prefix", cfg.Redis.Prefix))
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
