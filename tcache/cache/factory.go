package cache

import (
	"context"

	"github.com/ZanzyTHEbar/toon-cache/tcache/config"
	"github.com/ZanzyTHEbar/toon-cache/tcache/db"
	"github.com/rs/zerolog"
)

// Factory creates and wires the cache access layer from configuration.
type Factory struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewFactory creates a new cache factory.
func NewFactory(cfg *config.Config, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateService validates the store configuration and returns a wired
// cache access layer. Configuration errors surface here, before any
// network call.
func (f *Factory) CreateService() (*Service, error) {
	store, err := db.NewManager(f.cfg.Store, f.logger)
	if err != nil {
		return nil, err
	}

	return NewService(store, f.createLocalCache(), f.cfg.Cache.LocalTTLSeconds, f.logger), nil
}

// defaultLocalCapacity backs off misconfigured capacities; an LRU with
// capacity below one would evict every entry as it is inserted.
const defaultLocalCapacity = 1000

// createLocalCache creates the memoization tier from config.
func (f *Factory) createLocalCache() LocalCache {
	if !f.cfg.Cache.LocalEnabled {
		return &noOpCache{}
	}

	capacity := f.cfg.Cache.LocalCapacity
	if capacity < 1 {
		capacity = defaultLocalCapacity
		f.logger.Warn().Int("local_capacity", f.cfg.Cache.LocalCapacity).Msg("LocalCapacity clamped to default of 1000")
	}
	return NewLRUCache(capacity)
}

// noOpCache implements LocalCache with no-op behavior when the local
// tier is disabled: every lookup is a store round trip.
type noOpCache struct{}

func (c *noOpCache) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }
func (c *noOpCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	return nil
}
func (c *noOpCache) Delete(ctx context.Context, key string) error { return nil }

// Ensure noOpCache implements the LocalCache interface.
var _ LocalCache = (*noOpCache)(nil)
