package wecom

import (
	"time"

	"github.com/gobeaver/filekit-wxwork/config"
)

// DefaultPrefix is the environment prefix used by GetConfig and Init.
const DefaultPrefix = "BEAVER_WECOM_"

// Config defines the media API client configuration
type Config struct {
	BaseURL     string        `env:"BASE_URL" envDefault:"https://qyapi.weixin.qq.com"`
	AccessToken string        `env:"ACCESS_TOKEN"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// Rate limiting, 0 disables it
	RateLimit int `env:"RATE_LIMIT" envDefault:"20"` // requests per second
	RateBurst int `env:"RATE_BURST" envDefault:"20"` // burst size

	// Monitoring
	EnableLogging bool   `env:"ENABLE_LOGGING" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Debug dumps every request and response through the logger
	Debug bool `env:"DEBUG" envDefault:"false"`
}

// DefaultConfig returns a Config with all default values applied.
// Use this when creating configs programmatically instead of from environment variables.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://qyapi.weixin.qq.com",
		Timeout:   30 * time.Second,
		RateLimit: 20,
		RateBurst: 20,
		LogLevel:  "info",
	}
}

// GetConfig returns config loaded from environment
func GetConfig(opts ...config.LoadOptions) (*Config, error) {
	cfg := &Config{}
	if len(opts) == 0 {
		opts = append(opts, config.LoadOptions{Prefix: DefaultPrefix})
	}
	if err := config.Load(cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
