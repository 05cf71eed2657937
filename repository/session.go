package repository

import (
	"context"

	"github.com/fastygo/taskflow/domain"
)

// SessionRepository stores the time-session log of each task.
type SessionRepository interface {
	LoadSessions(ctx context.Context, taskID string) ([]domain.TimeSession, error)
	SaveSessions(ctx context.Context, taskID string, sessions []domain.TimeSession) error
	DeleteSessions(ctx context.Context, taskID string) error
}
