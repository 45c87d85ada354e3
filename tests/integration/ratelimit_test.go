package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"weathersummary.app/app"
	"weathersummary.app/models"
)

func (s *IntegrationTestSuite) TestRateLimit_ExhaustedBurstAbortsBatch() {
	cfg := baseConfig(s.upstream.URL)
	cfg.RateLimit.BurstCapacity = 2
	cfg.RateLimit.BurstWindowMinutes = 5

	application, err := app.NewApplicationWithConfig(cfg)
	s.Require().NoError(err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Require().NoError(application.Shutdown(ctx))
	}()

	// Three favorites against a burst budget of two: the third admission
	// fails and the whole batch is discarded.
	target := summaryTarget(londonCoords+","+parisCoords+","+unmappedCoords, "10", "")
	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("X-API-Client", "ratelimit-batch")
	w := httptest.NewRecorder()

	application.Router().ServeHTTP(w, req)

	s.Equal(http.StatusTooManyRequests, w.Code)

	retryAfter := w.Header().Get("Retry-After")
	s.Require().NotEmpty(retryAfter)
	seconds, err := strconv.Atoi(retryAfter)
	s.Require().NoError(err)
	s.Positive(seconds)

	response := decodeJSON[models.ErrorResponse](s, w)
	s.Equal("burst quota exhausted, slow down", response.Error)
}

func (s *IntegrationTestSuite) TestRateLimit_PerClientQuotaIsolatesClients() {
	cfg := baseConfig(s.upstream.URL)
	cfg.RateLimit.ClientCapacity = 1
	cfg.RateLimit.ClientWindowMinutes = 60

	application, err := app.NewApplicationWithConfig(cfg)
	s.Require().NoError(err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Require().NoError(application.Shutdown(ctx))
	}()
	router := application.Router()

	get := func(client string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", summaryTarget(londonCoords, "20", ""), nil)
		req.Header.Set("X-API-Client", client)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// First client spends its single hourly token, then gets refused.
	s.Equal(http.StatusOK, get("tenant-a").Code)
	w := get("tenant-a")
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Equal("hourly client quota exhausted", decodeJSON[models.ErrorResponse](s, w).Error)

	// A different client still has its own budget.
	s.Equal(http.StatusOK, get("tenant-b").Code)
}
