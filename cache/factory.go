package cache

import (
	"fmt"

	"weathersummary.app/config"
)

// NewStore builds the configured cache backend.
func NewStore(cfg config.CacheConfig) (Store, error) {
	switch cfg.Type {
	case config.CacheTypeMemory:
		return NewMemoryStore(cfg.MaxEntries), nil
	case config.CacheTypeRedis:
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}
