package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KeyValueStore.Get for missing keys.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the durable local storage every repository writes through.
// Values are opaque JSON documents.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
