package kv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

type settingsRepository struct {
	store repository.KeyValueStore
}

func NewSettingsRepository(store repository.KeyValueStore) repository.SettingsRepository {
	return &settingsRepository{store: store}
}

// LoadSettings merges the saved object over the defaults. A corrupt entry
// yields the defaults together with the decode error.
func (r *settingsRepository) LoadSettings(ctx context.Context) (domain.Settings, error) {
	raw, err := r.store.Get(ctx, KeySettings)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return domain.DefaultSettings(), nil
		}
		return domain.DefaultSettings(), err
	}
	return domain.MergeSettings(raw)
}

func (r *settingsRepository) SaveSettings(ctx context.Context, settings domain.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, KeySettings, payload)
}
