package kvstore

import (
	"time"

	"github.com/gobeaver/filekit-wxwork/kvstore/driver/badger"
	"github.com/gobeaver/filekit-wxwork/kvstore/driver/memory"
	"github.com/gobeaver/filekit-wxwork/kvstore/driver/redis"
)

// Driver registration functions

func memoryRegister(cfg Config) (Store, error) {
	return memory.New(memory.Config{
		MaxKeys:         cfg.MaxKeys,
		CleanupInterval: cfg.ParsedCleanupInterval(),
		KeyPrefix:       cfg.FullPrefix(),
	})
}

func redisRegister(cfg Config) (Store, error) {
	return redis.New(redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		Database: cfg.Database,
		URL:      cfg.URL,

		MaxRetries:      cfg.MaxRetries,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Second,

		UseTLS:   cfg.UseTLS,
		CertFile: cfg.CertFile,
		KeyFile:  cfg.KeyFile,

		KeyPrefix: cfg.FullPrefix(),
	})
}

func badgerRegister(cfg Config) (Store, error) {
	if cfg.BadgerPath == "" && !cfg.BadgerInMemory {
		return nil, ErrInvalidConfig
	}
	return badger.New(badger.Config{
		Path:      cfg.BadgerPath,
		InMemory:  cfg.BadgerInMemory,
		KeyPrefix: cfg.FullPrefix(),
	})
}
