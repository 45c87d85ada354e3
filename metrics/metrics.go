// Package metrics owns every prometheus series the service exports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the registered metric vectors. It is constructed once at
// composition time with an explicit registerer, so tests can run against
// isolated registries instead of the process-global one.
type Collector struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	cacheRequests *prometheus.CounterVec
	cacheLatency  *prometheus.HistogramVec
	cacheHitRatio *prometheus.GaugeVec

	rateLimitRequests   *prometheus.CounterVec
	rateLimitRejections *prometheus.CounterVec

	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
}

// NewCollector registers the service's metric vectors with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cache_hits_total",
				Help: "The total number of cache hits",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cache_misses_total",
				Help: "The total number of cache misses",
			},
			[]string{"cache"},
		),
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cache_requests_total",
				Help: "The total number of cache requests",
			},
			[]string{"cache"},
		),
		cacheLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weather_cache_duration_seconds",
				Help:    "Cache operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"cache", "operation"},
		),
		cacheHitRatio: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "weather_cache_hit_ratio",
				Help: "Cache hit ratio (hits/total requests)",
			},
			[]string{"cache"},
		),
		rateLimitRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_ratelimit_requests_total",
				Help: "Rate limiter admission checks by outcome",
			},
			[]string{"outcome"},
		),
		rateLimitRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_ratelimit_rejections_total",
				Help: "Rate limiter rejections by quota layer",
			},
			[]string{"layer"},
		),
		providerRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_provider_requests_total",
				Help: "Upstream provider calls by operation and outcome",
			},
			[]string{"provider", "operation", "outcome"},
		),
		providerLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weather_provider_request_duration_seconds",
				Help:    "Upstream provider call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "operation"},
		),
	}
}

// CacheMetrics binds the cache vectors to one cache label.
func (c *Collector) CacheMetrics(cacheType string) *CacheMetrics {
	return &CacheMetrics{cacheType: cacheType, collector: c}
}

// RateLimitMetrics exposes the limiter counters.
func (c *Collector) RateLimitMetrics() *RateLimitMetrics {
	return &RateLimitMetrics{collector: c}
}

// ProviderMetrics binds the provider vectors to one provider label.
func (c *Collector) ProviderMetrics(provider string) *ProviderMetrics {
	return &ProviderMetrics{provider: provider, collector: c}
}

// RateLimitMetrics records limiter admission outcomes.
type RateLimitMetrics struct {
	collector *Collector
}

// RecordAllowed counts an admitted request.
func (m *RateLimitMetrics) RecordAllowed() {
	m.collector.rateLimitRequests.WithLabelValues("allowed").Inc()
}

// RecordRejected counts a rejection attributed to the named quota layer.
func (m *RateLimitMetrics) RecordRejected(layer string) {
	m.collector.rateLimitRequests.WithLabelValues("rejected").Inc()
	m.collector.rateLimitRejections.WithLabelValues(layer).Inc()
}

// ProviderMetrics records upstream call outcomes for one provider.
type ProviderMetrics struct {
	provider  string
	collector *Collector
}

// RecordRequest counts one upstream call and observes its duration.
func (m *ProviderMetrics) RecordRequest(operation, outcome string, seconds float64) {
	m.collector.providerRequests.WithLabelValues(m.provider, operation, outcome).Inc()
	m.collector.providerLatency.WithLabelValues(m.provider, operation).Observe(seconds)
}
