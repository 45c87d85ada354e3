package integration

import (
	"net/http"

	"weathersummary.app/models"
)

func (s *IntegrationTestSuite) TestHealthEndpoint() {
	w := s.get("/api/health", "health")

	s.Equal(http.StatusOK, w.Code)

	response := decodeJSON[models.HealthResponse](s, w)
	s.Equal("ok", response.Status)
	s.NotEmpty(response.Uptime)
	s.Contains(response.Providers, "openweathermap")
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	// Generate some traffic so the collectors have samples.
	s.Equal(http.StatusOK, s.get(summaryTarget(londonCoords, "20", ""), "metrics").Code)

	w := s.get("/metrics", "metrics")

	s.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Contains(body, "weather_provider_requests_total")
	s.Contains(body, "weather_cache_requests_total")
	s.Contains(body, "weather_ratelimit_requests_total")
}

func (s *IntegrationTestSuite) TestRequestIDPropagation() {
	w := s.get("/api/health", "request-id")
	s.NotEmpty(w.Header().Get("X-Request-ID"))

	req := s.get("/api/health", "request-id")
	s.NotEqual(w.Header().Get("X-Request-ID"), req.Header().Get("X-Request-ID"),
		"each request gets its own generated id")
}
