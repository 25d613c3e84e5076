// Package badger stores keys in an embedded BadgerDB, for single-node
// deployments that want the metadata cache to survive restarts without Redis.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/gobeaver/filekit-wxwork/kvstore/pattern"
)

// ErrClosed is returned by Ping after Close.
var ErrClosed = errors.New("badger store is closed")

// Store implements the key/value store on BadgerDB.
type Store struct {
	db        *badger.DB
	keyPrefix string
}

// Config holds Badger specific configuration
type Config struct {
	Path      string
	InMemory  bool
	KeyPrefix string

	// Options overrides everything above except KeyPrefix when set.
	Options *badger.Options
}

// New opens (or creates) the database.
func New(cfg Config) (*Store, error) {
	var opts badger.Options
	switch {
	case cfg.Options != nil:
		opts = *cfg.Options
	case cfg.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	default:
		opts = badger.DefaultOptions(cfg.Path)
	}
	if cfg.Options == nil {
		opts = opts.WithLoggingLevel(badger.WARNING)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %q: %w", cfg.Path, err)
	}

	return &Store{db: db, keyPrefix: cfg.KeyPrefix}, nil
}

func (s *Store) key(k string) []byte {
	return []byte(s.keyPrefix + k)
}

// Get retrieves a value by key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		v, err := get(txn, s.key(key))
		val = v
		return err
	})
	return val, err
}

func get(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Set stores a value with optional TTL
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(s.key(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes a key
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	var existed bool
	err := s.db.Update(func(txn *badger.Txn) error {
		k := s.key(key)
		_, err := txn.Get(k)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true
		return txn.Delete(k)
	})
	return existed, err
}

// Exists checks if a key exists
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.key(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		found = err == nil
		return err
	})
	return found, err
}

// Scan iterates keys sharing the pattern's literal prefix and filters the
// rest with the glob. count is unused: one iterator covers the range.
func (s *Store) Scan(ctx context.Context, match string, count int) ([]string, error) {
	g, err := pattern.Compile(match)
	if err != nil {
		return nil, err
	}

	var keys []string
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = s.key(pattern.LiteralPrefix(match))
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		n := 0
		for it.Rewind(); it.Valid(); it.Next() {
			n++
			if n%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			k := string(it.Item().Key())[len(s.keyPrefix):]
			if g.Match(k) {
				keys = append(keys, k)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// MGet fetches several keys in one read transaction.
func (s *Store) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for i, k := range keys {
			v, err := get(txn, s.key(k))
			if err != nil {
				return err
			}
			out[i] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Clear removes all keys under the prefix
func (s *Store) Clear(ctx context.Context) error {
	if s.keyPrefix == "" {
		return s.db.DropAll()
	}
	return s.db.DropPrefix([]byte(s.keyPrefix))
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is still open
func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}
