package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// TypedCache stores one kind of value under its own namespace with a fixed
// TTL. Keys never collide across namespaces even when the raw key strings
// coincide, so the same coordinate string can key weather, forecast and
// location entries side by side.
type TypedCache[T any] struct {
	store     Store
	namespace string
	ttl       time.Duration
}

// NewTypedCache binds a namespace and TTL to the given store.
func NewTypedCache[T any](store Store, namespace string, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		store:     store,
		namespace: namespace,
		ttl:       ttl,
	}
}

// Get returns the decoded value for key. An entry that fails to decode is
// treated as a miss and dropped.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T

	data, found := c.store.Get(ctx, c.storageKey(key))
	if !found {
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		slog.Warn("dropping undecodable cache entry", "namespace", c.namespace, "key", key, "error", err)
		_ = c.store.Delete(ctx, c.storageKey(key))
		var zero T
		return zero, false
	}

	return value, true
}

// Set stores the value with a fresh insertion timestamp.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache encode failed", "namespace", c.namespace, "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, c.storageKey(key), data, c.ttl); err != nil {
		slog.Warn("cache set failed", "namespace", c.namespace, "key", key, "error", err)
	}
}

// GetOrLoad returns the cached value or invokes loader on a miss. The loader
// runs at most once per call; its result is cached only on success, so a
// failed lookup is retried by the next caller instead of being remembered.
func (c *TypedCache[T]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (T, error)) (T, error) {
	if value, found := c.Get(ctx, key); found {
		return value, nil
	}

	value, err := loader(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(ctx, key, value)
	return value, nil
}

// Invalidate removes one entry.
func (c *TypedCache[T]) Invalidate(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, c.storageKey(key)); err != nil {
		slog.Warn("cache invalidate failed", "namespace", c.namespace, "key", key, "error", err)
	}
}

// InvalidateAll removes every entry in this cache's namespace, leaving other
// namespaces on the shared store untouched.
func (c *TypedCache[T]) InvalidateAll(ctx context.Context) {
	if err := c.store.DeletePrefix(ctx, c.namespace+":"); err != nil {
		slog.Warn("cache invalidate-all failed", "namespace", c.namespace, "error", err)
	}
}

// TTL returns the fixed lifetime of entries in this cache.
func (c *TypedCache[T]) TTL() time.Duration {
	return c.ttl
}

func (c *TypedCache[T]) storageKey(key string) string {
	return c.namespace + ":" + key
}
