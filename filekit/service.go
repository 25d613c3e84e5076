package filekit

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a FileSystem from configuration.
type Factory func(cfg Config) (FileSystem, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Factory)
)

// RegisterDriver makes a driver available by name. Drivers call it from init.
// Registering the same name twice panics.
func RegisterDriver(name string, factory Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if factory == nil {
		panic("filekit: RegisterDriver factory is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("filekit: RegisterDriver called twice for driver " + name)
	}
	drivers[name] = factory
}

// Drivers returns the sorted names of registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the FileSystem selected by cfg.Driver.
func New(cfg Config) (FileSystem, error) {
	driversMu.RLock()
	factory, ok := drivers[cfg.Driver]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("filekit: unknown driver %q (forgotten import?)", cfg.Driver)
	}
	return factory(cfg)
}

// NewFromEnv creates the FileSystem described by BEAVER_FILEKIT_* variables.
func NewFromEnv() (FileSystem, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return New(*cfg)
}
