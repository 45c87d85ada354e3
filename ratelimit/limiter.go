// Package ratelimit implements token-bucket admission control for upstream
// weather traffic. The service consumes one token per location before any
// outbound call; deployments choose between a single shared bucket and the
// layered daily/hourly/burst variant.
package ratelimit

import "time"

// Layer names reported in rejection decisions.
const (
	LayerGlobal = "daily"
	LayerClient = "hourly"
	LayerBurst  = "burst"
)

// Decision is the outcome of one admission check. Layer is set only on
// rejection and names the quota that refused the request. Remaining is the
// most constrained layer's whole-token count; it is negative when the
// limiter does not track one.
type Decision struct {
	Allowed    bool
	Layer      string
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits or rejects work against one or more token buckets.
// Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(clientID string) Decision
}

// SingleLimiter guards all callers behind one shared bucket.
type SingleLimiter struct {
	bucket *TokenBucket
}

// NewSingleLimiter returns a limiter backed by a single bucket of the given
// capacity and refill window.
func NewSingleLimiter(capacity int, window time.Duration) (*SingleLimiter, error) {
	bucket, err := NewTokenBucket(capacity, window)
	if err != nil {
		return nil, err
	}
	return &SingleLimiter{bucket: bucket}, nil
}

// Allow consumes one token; the client identity is ignored.
func (l *SingleLimiter) Allow(string) Decision {
	if l.bucket.TryConsume() {
		return Decision{Allowed: true, Remaining: l.bucket.Remaining()}
	}
	return Decision{
		Allowed:    false,
		Layer:      LayerGlobal,
		Remaining:  l.bucket.Remaining(),
		RetryAfter: l.bucket.timeUntilNextToken(),
	}
}

// NoopLimiter admits everything; used when rate limiting is disabled.
type NoopLimiter struct{}

// Allow always admits and reports no tracked quota.
func (NoopLimiter) Allow(string) Decision {
	return Decision{Allowed: true, Remaining: -1}
}

var (
	_ Limiter = (*SingleLimiter)(nil)
	_ Limiter = NoopLimiter{}
	_ Limiter = (*LayeredLimiter)(nil)
)
