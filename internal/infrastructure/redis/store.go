package redis

import (
	"context"
	"errors"
	"strings"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskflow/repository"
)

const scanBatch = 100

// Store maps the key-value contract onto Redis strings under a key prefix,
// so several profiles can share one Redis database.
type Store struct {
	client *goRedis.Client
	prefix string
}

func NewStore(client *goRedis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "taskflow:"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goRedis.Nil) {
			return nil, repository.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	return keys, iter.Err()
}

// Size counts the keys under the prefix.
func (s *Store) Size(ctx context.Context) (int, error) {
	keys, err := s.Keys(ctx)
	return len(keys), err
}

func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, s.key(key))
	}
	return s.client.Del(ctx, full...).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

var _ repository.KeyValueStore = (*Store)(nil)
