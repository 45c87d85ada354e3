package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestCacheMetrics(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())
	metrics := collector.CacheMetrics("test")

	t.Run("Initial state", func(t *testing.T) {
		stats := metrics.GetStats()
		assert.Equal(t, "test", stats["cache_type"])
		assert.Equal(t, int64(0), stats["hits"])
		assert.Equal(t, int64(0), stats["misses"])
		assert.Equal(t, int64(0), stats["total"])
	})

	t.Run("Record hits and misses", func(t *testing.T) {
		metrics.RecordHit()
		metrics.RecordHit()
		metrics.RecordMiss()

		stats := metrics.GetStats()
		assert.Equal(t, int64(2), stats["hits"])
		assert.Equal(t, int64(1), stats["misses"])
		assert.Equal(t, int64(3), stats["total"])
		assert.Equal(t, float64(2)/float64(3), stats["hit_ratio"])
	})

	t.Run("Hit ratio calculation", func(t *testing.T) {
		ratioMetrics := collector.CacheMetrics("ratio_test")

		for i := 0; i < 7; i++ {
			ratioMetrics.RecordHit()
		}
		for i := 0; i < 3; i++ {
			ratioMetrics.RecordMiss()
		}

		stats := ratioMetrics.GetStats()
		assert.Equal(t, int64(7), stats["hits"])
		assert.Equal(t, int64(3), stats["misses"])
		assert.Equal(t, int64(10), stats["total"])
		assert.Equal(t, 0.7, stats["hit_ratio"])
	})

	t.Run("Record latency", func(t *testing.T) {
		metrics.RecordLatency("get", 0.001)
		metrics.RecordLatency("set", 0.002)
	})
}

func TestRateLimitMetrics(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())
	metrics := collector.RateLimitMetrics()

	assert.NotPanics(t, func() {
		metrics.RecordAllowed()
		metrics.RecordRejected("daily")
		metrics.RecordRejected("burst")
	})
}

func TestProviderMetrics(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())
	metrics := collector.ProviderMetrics("openweathermap")

	assert.NotPanics(t, func() {
		metrics.RecordRequest("forecast", "success", 0.120)
		metrics.RecordRequest("current_weather", "error", 0.050)
	})
}
