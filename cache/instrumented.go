package cache

import (
	"context"
	"log/slog"
	"time"

	"weathersummary.app/metrics"
)

// InstrumentedStore decorates a Store with hit/miss counters and operation
// latency. Each typed cache wraps the shared backend with its own label so
// the series separate by data kind.
type InstrumentedStore struct {
	store   Store
	metrics *metrics.CacheMetrics
}

// NewInstrumentedStore wraps store so its operations are recorded.
func NewInstrumentedStore(store Store, m *metrics.CacheMetrics) *InstrumentedStore {
	return &InstrumentedStore{store: store, metrics: m}
}

func (c *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var data []byte
	var found bool

	c.measureLatency("get", func() {
		data, found = c.store.Get(ctx, key)
	})

	if found {
		c.metrics.RecordHit()
		slog.Debug("cache hit", "key", key)
	} else {
		c.metrics.RecordMiss()
		slog.Debug("cache miss", "key", key)
	}

	return data, found
}

func (c *InstrumentedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var err error
	c.measureLatency("set", func() {
		err = c.store.Set(ctx, key, value, ttl)
	})
	return err
}

func (c *InstrumentedStore) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

func (c *InstrumentedStore) DeletePrefix(ctx context.Context, prefix string) error {
	return c.store.DeletePrefix(ctx, prefix)
}

// Close is a no-op: the wrapped backend is shared across namespaces and is
// closed once by the owner.
func (c *InstrumentedStore) Close() error {
	return nil
}

func (c *InstrumentedStore) measureLatency(operation string, fn func()) {
	start := time.Now()
	fn()
	c.metrics.RecordLatency(operation, time.Since(start).Seconds())
}

var _ Store = (*InstrumentedStore)(nil)
