package kvstore

import (
	"context"
	"time"
)

// Store defines the key/value operations the metadata cache relies on.
// Operations are atomic per key; nothing is transactional across keys.
type Store interface {
	// Get retrieves a value by key. A nil value with a nil error means the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A positive ttl makes the write expire; zero or negative
	// stores it without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Exists checks if a key exists
	Exists(ctx context.Context, key string) (bool, error)

	// Scan returns every key matching a glob pattern, fetching count keys per
	// round trip. Returned keys are de-duplicated and never carry the store prefix.
	Scan(ctx context.Context, pattern string, count int) ([]string, error)

	// MGet fetches several keys at once. The result is aligned with keys and
	// holds nil for absent entries.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)

	// Clear removes all keys under the store prefix
	Clear(ctx context.Context) error

	// Close closes the store connection
	Close() error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error
}
