package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

type taskRepository struct {
	store repository.KeyValueStore
}

// NewTaskRepository returns a TaskRepository backed by a key-value store.
func NewTaskRepository(store repository.KeyValueStore) repository.TaskRepository {
	return &taskRepository{store: store}
}

func (r *taskRepository) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	raw, err := r.store.Get(ctx, KeyTasks)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return []domain.Task{}, nil
		}
		return nil, err
	}

	var tasks []domain.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", KeyTasks, err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (r *taskRepository) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, KeyTasks, payload)
}

func (r *taskRepository) LoadAnalytics(ctx context.Context) (*domain.Analytics, error) {
	raw, err := r.store.Get(ctx, KeyAnalytics)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var analytics domain.Analytics
	if err := json.Unmarshal(raw, &analytics); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", KeyAnalytics, err)
	}
	return &analytics, nil
}

func (r *taskRepository) SaveAnalytics(ctx context.Context, analytics domain.Analytics) error {
	payload, err := json.Marshal(analytics)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, KeyAnalytics, payload)
}
