package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

type sessionRepository struct {
	store repository.KeyValueStore
}

// NewSessionRepository stores one JSON array of sessions per task.
func NewSessionRepository(store repository.KeyValueStore) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) LoadSessions(ctx context.Context, taskID string) ([]domain.TimeSession, error) {
	if taskID == "" {
		return nil, domain.ErrInvalidPayload
	}
	raw, err := r.store.Get(ctx, SessionKey(taskID))
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return []domain.TimeSession{}, nil
		}
		return nil, err
	}

	var sessions []domain.TimeSession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("decoding sessions of %s: %w", taskID, err)
	}
	if sessions == nil {
		sessions = []domain.TimeSession{}
	}
	return sessions, nil
}

func (r *sessionRepository) SaveSessions(ctx context.Context, taskID string, sessions []domain.TimeSession) error {
	if taskID == "" {
		return domain.ErrInvalidPayload
	}
	if sessions == nil {
		sessions = []domain.TimeSession{}
	}
	payload, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, SessionKey(taskID), payload)
}

func (r *sessionRepository) DeleteSessions(ctx context.Context, taskID string) error {
	return r.store.Delete(ctx, SessionKey(taskID))
}
