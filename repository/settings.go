package repository

import (
	"context"

	"github.com/fastygo/taskflow/domain"
)

type SettingsRepository interface {
	LoadSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
}
