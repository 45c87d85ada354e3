package ratelimit

import (
	"errors"
	"math"
	"sync"
	"time"
)

// TokenBucket is a refill-then-consume token bucket. Refill and consumption
// happen under a single mutex hold, so concurrent callers observe a
// linearizable admission order: a bucket of capacity C admits exactly C
// requests before the first rejection.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     float64
	lastRefill time.Time
	window     time.Duration

	now func() time.Time
}

// NewTokenBucket returns a bucket that starts full and refills back to
// capacity over one window.
func NewTokenBucket(capacity int, window time.Duration) (*TokenBucket, error) {
	if capacity < 1 {
		return nil, errors.New("ratelimit: capacity must be at least 1")
	}
	if window <= 0 {
		return nil, errors.New("ratelimit: window must be positive")
	}
	return newBucket(capacity, window, time.Now), nil
}

// newBucket skips argument validation; callers have checked capacity and
// window already.
func newBucket(capacity int, window time.Duration, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: now(),
		window:     window,
		now:        now,
	}
}

// TryConsume refills for elapsed time, then takes one token if a whole one
// is available.
func (b *TokenBucket) TryConsume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Remaining returns the number of whole tokens currently available.
func (b *TokenBucket) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()
	return int(math.Floor(b.tokens))
}

// TimeUntilReset returns how long until the bucket is back at full capacity
// at the configured refill rate. A full bucket resets in zero time.
func (b *TokenBucket) TimeUntilReset() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()
	return b.timeForTokensLocked(float64(b.capacity) - b.tokens)
}

// Capacity returns the configured maximum token count.
func (b *TokenBucket) Capacity() int {
	return b.capacity
}

// timeUntilNextToken returns how long until one whole token is available.
func (b *TokenBucket) timeUntilNextToken() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()
	return b.timeForTokensLocked(1 - b.tokens)
}

// giveBack returns a token consumed by a request that a later limiter layer
// rejected, so refused work does not burn quota.
func (b *TokenBucket) giveBack() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = math.Min(float64(b.capacity), b.tokens+1)
}

// refillLocked advances the token count for wall time elapsed since the last
// refill, saturating at capacity. The refill is computed directly from
// elapsed/window rather than an accumulated per-millisecond rate, so a full
// idle window restores exactly capacity tokens. Callers must hold mu.
func (b *TokenBucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	refilled := float64(elapsed) * float64(b.capacity) / float64(b.window)
	b.tokens = math.Min(float64(b.capacity), b.tokens+refilled)
	b.lastRefill = now
}

// timeForTokensLocked converts a token deficit into a wait at the refill
// rate. Callers must hold mu.
func (b *TokenBucket) timeForTokensLocked(missing float64) time.Duration {
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing * float64(b.window) / float64(b.capacity))
}
