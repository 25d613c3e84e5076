package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/filekit-wxwork/kvstore/pattern"
)

// ErrMaxKeys is returned by Set when the store is full.
var ErrMaxKeys = errors.New("max keys limit reached")

// entry is a stored value with its absolute expiry in unix nanoseconds.
type entry struct {
	value      []byte
	expiration int64
}

func (e *entry) expired(now int64) bool {
	return e.expiration > 0 && now > e.expiration
}

// Store is an in-process key/value store with per-key expiry.
type Store struct {
	mu              sync.RWMutex
	items           map[string]*entry
	maxKeys         int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
	keyPrefix       string
}

// Config holds memory store configuration
type Config struct {
	MaxKeys         int
	CleanupInterval time.Duration
	KeyPrefix       string
}

// New creates a memory store and starts its janitor.
func New(cfg Config) (*Store, error) {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	s := &Store{
		items:           make(map[string]*entry),
		maxKeys:         cfg.MaxKeys,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
		keyPrefix:       cfg.KeyPrefix,
	}

	go s.cleanupExpired()

	return s, nil
}

// Get retrieves a value by key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(key, time.Now().UnixNano()), nil
}

func (s *Store) lookup(key string, now int64) []byte {
	e, ok := s.items[s.keyPrefix+key]
	if !ok || e.expired(now) {
		return nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out
}

// Set stores a value with optional TTL
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullKey := s.keyPrefix + key
	if s.maxKeys > 0 && len(s.items) >= s.maxKeys {
		if _, exists := s.items[fullKey]; !exists {
			return ErrMaxKeys
		}
	}

	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}

	v := make([]byte, len(value))
	copy(v, value)
	s.items[fullKey] = &entry{value: v, expiration: expiration}
	return nil
}

// Delete removes a key
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullKey := s.keyPrefix + key
	e, ok := s.items[fullKey]
	if !ok {
		return false, nil
	}
	delete(s.items, fullKey)
	return !e.expired(time.Now().UnixNano()), nil
}

// Exists checks if a key exists
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[s.keyPrefix+key]
	return ok && !e.expired(time.Now().UnixNano()), nil
}

// Scan walks the whole map once; count has no effect here.
func (s *Store) Scan(ctx context.Context, match string, count int) ([]string, error) {
	g, err := pattern.Compile(match)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UnixNano()
	var keys []string
	for fullKey, e := range s.items {
		if e.expired(now) || !strings.HasPrefix(fullKey, s.keyPrefix) {
			continue
		}
		key := fullKey[len(s.keyPrefix):]
		if g.Match(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// MGet fetches several keys under one read lock.
func (s *Store) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UnixNano()
	out := make([][]byte, len(keys))
	for i, key := range keys {
		out[i] = s.lookup(key, now)
	}
	return out, nil
}

// Clear removes all keys
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Only clear items with our prefix
	if s.keyPrefix == "" {
		s.items = make(map[string]*entry)
		return nil
	}
	for key := range s.items {
		if strings.HasPrefix(key, s.keyPrefix) {
			delete(s.items, key)
		}
	}
	return nil
}

// Close stops the janitor. It is safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() { close(s.stopCleanup) })
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) cleanupExpired() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Store) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixNano()
	for key, e := range s.items {
		if e.expired(now) {
			delete(s.items, key)
		}
	}
}
