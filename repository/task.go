package repository

import (
	"context"

	"github.com/fastygo/taskflow/domain"
)

// TaskRepository persists the full task collection and its analytics cache.
type TaskRepository interface {
	LoadTasks(ctx context.Context) ([]domain.Task, error)
	SaveTasks(ctx context.Context, tasks []domain.Task) error
	LoadAnalytics(ctx context.Context) (*domain.Analytics, error)
	SaveAnalytics(ctx context.Context, analytics domain.Analytics) error
}
