package repository

import (
	"context"
	"errors"
)

var (
	ErrKeyNotFound = errors.New("key not found")
)

// KeyValueStore is the storage primitive every backend provides. Values are
// JSON documents.
type KeyValueStore interface {
	// Get returns the value stored under key or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// SetMany writes all entries in a single backend round trip
	SetMany(ctx context.Context, entries map[string][]byte) error
	Close() error
}
