package filekit

import (
	"time"

	"github.com/gobeaver/filekit-wxwork/config"
)

type Config struct {
	// Default driver to use
	Driver string `env:"FILEKIT_DRIVER,default:wxwork"`

	// wxwork driver configuration
	WxWorkPrefix  string        `env:"FILEKIT_WXWORK_PREFIX,default:work"`
	WxWorkExpire  time.Duration `env:"FILEKIT_WXWORK_EXPIRE,default:72h"`
	WxWorkProfile string        `env:"FILEKIT_WXWORK_PROFILE"`
	// Env prefix for the metadata key/value store, e.g. BEAVER_ reads BEAVER_KV_DRIVER
	WxWorkStore string `env:"FILEKIT_WXWORK_STORE,default:BEAVER_"`

	// Upload limits
	MaxFileSize int64 `env:"FILEKIT_MAX_FILE_SIZE,default:20971520"` // 20MB, the platform's file media limit
}

// GetConfig returns config loaded from environment
func GetConfig(opts ...config.LoadOptions) (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
