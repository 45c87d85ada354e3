// Package cache provides the byte-level stores and the typed, namespaced
// caches layered on top of them. Stores know nothing about weather; the
// typed caches add JSON codec, per-namespace keys and a fixed TTL per
// instance.
package cache

import (
	"context"
	"time"
)

// Store is the byte-level cache backend. Implementations must be safe for
// concurrent use. Get never returns a value past its TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}
