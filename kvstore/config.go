package kvstore

import (
	"strings"
	"time"

	"github.com/gobeaver/filekit-wxwork/config"
)

// Config holds key/value store configuration
type Config struct {
	// Driver specifies the backend: "memory", "redis" or "badger"
	Driver string `env:"KV_DRIVER,default:memory"`

	// Redis specific settings
	Host     string `env:"KV_HOST,default:localhost"`
	Port     string `env:"KV_PORT,default:6379"`
	Password string `env:"KV_PASSWORD"`
	Database int    `env:"KV_DATABASE,default:0"`

	// Connection URL (overrides host/port/password)
	URL string `env:"KV_URL"`

	// Connection pool settings
	MaxRetries      int `env:"KV_MAX_RETRIES,default:3"`
	PoolSize        int `env:"KV_POOL_SIZE,default:10"`
	MinIdleConns    int `env:"KV_MIN_IDLE_CONNS,default:2"`
	MaxIdleConns    int `env:"KV_MAX_IDLE_CONNS,default:5"`
	ConnMaxLifetime int `env:"KV_CONN_MAX_LIFETIME,default:0"`  // seconds
	ConnMaxIdleTime int `env:"KV_CONN_MAX_IDLE_TIME,default:0"` // seconds

	// TLS settings for Redis
	UseTLS   bool   `env:"KV_USE_TLS,default:false"`
	CertFile string `env:"KV_CERT_FILE"`
	KeyFile  string `env:"KV_KEY_FILE"`

	// Memory store specific
	MaxKeys         int    `env:"KV_MAX_KEYS,default:0"`
	CleanupInterval string `env:"KV_CLEANUP_INTERVAL,default:1m"`

	// Badger store specific
	BadgerPath     string `env:"KV_BADGER_PATH,default:./storage/kv"`
	BadgerInMemory bool   `env:"KV_BADGER_IN_MEMORY,default:false"`

	// Common settings
	KeyPrefix string `env:"KV_KEY_PREFIX"` // prefix for all keys
	Namespace string `env:"KV_NAMESPACE"`  // namespace for isolation
}

// GetConfig loads configuration from environment variables
func GetConfig(opts ...config.LoadOptions) (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, opts...); err != nil {
		return nil, err
	}

	// Normalize driver
	cfg.Driver = strings.ToLower(cfg.Driver)

	return cfg, nil
}

// ParsedCleanupInterval returns the cleanup interval as a time.Duration
func (c Config) ParsedCleanupInterval() time.Duration {
	if c.CleanupInterval == "" {
		return time.Minute
	}
	if d, err := time.ParseDuration(c.CleanupInterval); err == nil {
		return d
	}
	return time.Minute
}

// FullPrefix combines namespace and key prefix the way every driver applies them.
func (c Config) FullPrefix() string {
	prefix := c.KeyPrefix
	if c.Namespace != "" {
		prefix = c.Namespace + ":" + prefix
	}
	return prefix
}
