package ratelimit

import "weathersummary.app/metrics"

// InstrumentedLimiter decorates a Limiter with prometheus counters for every
// admission decision.
type InstrumentedLimiter struct {
	next    Limiter
	metrics *metrics.RateLimitMetrics
}

// NewInstrumentedLimiter wraps next so its decisions are recorded.
func NewInstrumentedLimiter(next Limiter, m *metrics.RateLimitMetrics) *InstrumentedLimiter {
	return &InstrumentedLimiter{next: next, metrics: m}
}

// Allow delegates to the wrapped limiter and records the outcome.
func (l *InstrumentedLimiter) Allow(clientID string) Decision {
	decision := l.next.Allow(clientID)
	if decision.Allowed {
		l.metrics.RecordAllowed()
	} else {
		l.metrics.RecordRejected(decision.Layer)
	}
	return decision
}

var _ Limiter = (*InstrumentedLimiter)(nil)
