package kvstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gobeaver/filekit-wxwork/config"
	"github.com/gobeaver/filekit-wxwork/kvstore/pattern"
)

// Global instances
var (
	defaultStore Store
	defaultOnce  sync.Once
	defaultErr   error
)

// Common errors
var (
	ErrNotInitialized = errors.New("kvstore not initialized")
	ErrInvalidDriver  = errors.New("invalid kvstore driver")
	ErrInvalidConfig  = errors.New("invalid kvstore configuration")
)

// EscapePattern quotes glob metacharacters so s matches itself in Scan.
func EscapePattern(s string) string {
	return pattern.Escape(s)
}

// Builder provides a way to create store instances with custom prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global store instance using the builder's prefix
func (b *Builder) Init() error {
	cfg, err := GetConfig(config.LoadOptions{Prefix: b.prefix})
	if err != nil {
		return err
	}
	return Init(*cfg)
}

// New creates a new store instance using the builder's prefix
func (b *Builder) New() (Store, error) {
	cfg, err := GetConfig(config.LoadOptions{Prefix: b.prefix})
	if err != nil {
		return nil, err
	}
	return New(*cfg)
}

// Init initializes the global store instance with optional config
func Init(configs ...Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = &configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultStore, defaultErr = New(*cfg)
	})

	return defaultErr
}

// New creates a new store instance with given config
func New(cfg Config) (Store, error) {
	if cfg.Driver == "" {
		cfg.Driver = "memory"
	}

	switch cfg.Driver {
	case "memory", "builtin":
		return memoryRegister(cfg)
	case "redis":
		return redisRegister(cfg)
	case "badger":
		return badgerRegister(cfg)
	default:
		return nil, ErrInvalidDriver
	}
}

// Default returns the global store instance
func Default() Store {
	if defaultStore == nil {
		_ = Init()
	}
	return defaultStore
}

// Get retrieves a value by key from the global store
func Get(ctx context.Context, key string) ([]byte, error) {
	if defaultStore == nil {
		return nil, ErrNotInitialized
	}
	return defaultStore.Get(ctx, key)
}

// Set stores a value with optional TTL in the global store
func Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if defaultStore == nil {
		return ErrNotInitialized
	}
	return defaultStore.Set(ctx, key, value, ttl)
}

// Ping checks if the global store is reachable
func Ping(ctx context.Context) error {
	if defaultStore == nil {
		return ErrNotInitialized
	}
	return defaultStore.Ping(ctx)
}

// IsHealthy returns true if the store is reachable
func IsHealthy() bool {
	return Ping(context.Background()) == nil
}

// Reset clears the global instance (for testing)
func Reset() {
	if defaultStore != nil {
		defaultStore.Close()
	}
	defaultStore = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
