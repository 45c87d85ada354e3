package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// LayeredConfig sizes the three quota layers of a LayeredLimiter.
type LayeredConfig struct {
	GlobalCapacity int
	GlobalWindow   time.Duration
	ClientCapacity int
	ClientWindow   time.Duration
	BurstCapacity  int
	BurstWindow    time.Duration
}

func (c LayeredConfig) validate() error {
	if c.GlobalCapacity < 1 || c.ClientCapacity < 1 || c.BurstCapacity < 1 {
		return errors.New("ratelimit: every layer capacity must be at least 1")
	}
	if c.GlobalWindow <= 0 || c.ClientWindow <= 0 || c.BurstWindow <= 0 {
		return errors.New("ratelimit: every layer window must be positive")
	}
	return nil
}

// LayeredLimiter runs each request through a global daily quota, a
// per-client hourly quota and a short burst window, in that order. A request
// is admitted only when every layer admits; the first rejecting layer names
// the decision. Tokens taken by layers ahead of a rejection are returned, so
// refused requests do not drain quota.
type LayeredLimiter struct {
	cfg    LayeredConfig
	global *TokenBucket
	burst  *TokenBucket

	mu        sync.Mutex
	perClient map[string]*clientBucket
	lastPrune time.Time

	now func() time.Time
}

// clientBucket pairs a per-client bucket with its last use so idle clients
// can be pruned.
type clientBucket struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewLayeredLimiter builds the three-layer limiter from the given sizes.
func NewLayeredLimiter(cfg LayeredConfig) (*LayeredLimiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	now := time.Now
	return &LayeredLimiter{
		cfg:       cfg,
		global:    newBucket(cfg.GlobalCapacity, cfg.GlobalWindow, now),
		burst:     newBucket(cfg.BurstCapacity, cfg.BurstWindow, now),
		perClient: map[string]*clientBucket{},
		lastPrune: now(),
		now:       now,
	}, nil
}

// Allow checks the global, per-client and burst layers in sequence.
func (l *LayeredLimiter) Allow(clientID string) Decision {
	layers := []struct {
		name   string
		bucket *TokenBucket
	}{
		{LayerGlobal, l.global},
		{LayerClient, l.clientBucketFor(clientID)},
		{LayerBurst, l.burst},
	}

	consumed := make([]*TokenBucket, 0, len(layers))
	for _, layer := range layers {
		if layer.bucket.TryConsume() {
			consumed = append(consumed, layer.bucket)
			continue
		}
		for _, bucket := range consumed {
			bucket.giveBack()
		}
		return Decision{
			Allowed:    false,
			Layer:      layer.name,
			Remaining:  layer.bucket.Remaining(),
			RetryAfter: layer.bucket.timeUntilNextToken(),
		}
	}

	remaining := layers[0].bucket.Remaining()
	for _, layer := range layers[1:] {
		if r := layer.bucket.Remaining(); r < remaining {
			remaining = r
		}
	}
	return Decision{Allowed: true, Remaining: remaining}
}

// clientBucketFor returns the hourly bucket for the client, creating it on
// first sight. Buckets idle for longer than a full window are dropped; by
// then they have refilled completely and hold no state worth keeping.
func (l *LayeredLimiter) clientBucketFor(clientID string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > l.cfg.ClientWindow {
		for id, cb := range l.perClient {
			if now.Sub(cb.lastSeen) > l.cfg.ClientWindow {
				delete(l.perClient, id)
			}
		}
		l.lastPrune = now
	}

	cb, ok := l.perClient[clientID]
	if !ok {
		cb = &clientBucket{bucket: newBucket(l.cfg.ClientCapacity, l.cfg.ClientWindow, l.now)}
		l.perClient[clientID] = cb
	}
	cb.lastSeen = now
	return cb.bucket
}
