package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"weathersummary.app/app"
	"weathersummary.app/config"
	"weathersummary.app/models"
)

func (s *IntegrationTestSuite) TestCaching_RepeatSummaryServedFromCache() {
	// A coordinate no other test touches, so the first request is a cold
	// cache: one geocoding call plus one forecast call.
	const coords = "33.33,33.33"

	before := s.hits.Load()
	w := s.get(summaryTarget(coords, "20", ""), "caching-mem")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(before+2, s.hits.Load())

	w = s.get(summaryTarget(coords, "20", ""), "caching-mem")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(before+2, s.hits.Load(), "repeat request must not call upstream")
}

func (s *IntegrationTestSuite) TestCaching_DetailsWarmAllThreeKinds() {
	const coords = "44.44,44.44"

	before := s.hits.Load()
	w := s.get("/api/weather/locations/"+coords, "caching-details")
	s.Equal(http.StatusOK, w.Code)
	// Geocoding, forecast and current conditions.
	s.Equal(before+3, s.hits.Load())

	w = s.get("/api/weather/locations/"+coords, "caching-details")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(before+3, s.hits.Load())
}

func (s *IntegrationTestSuite) TestCaching_RedisBackend() {
	mr := miniredis.RunT(s.T())

	cfg := baseConfig(s.upstream.URL)
	cfg.Cache.Type = config.CacheTypeRedis
	cfg.Cache.Redis = config.RedisConfig{
		Addr:                mr.Addr(),
		DialTimeoutSeconds:  1,
		ReadTimeoutSeconds:  1,
		WriteTimeoutSeconds: 1,
	}

	application, err := app.NewApplicationWithConfig(cfg)
	s.Require().NoError(err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Require().NoError(application.Shutdown(ctx))
	}()
	router := application.Router()

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", target, nil)
		req.Header.Set("X-API-Client", "caching-redis")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	before := s.hits.Load()
	w := get(summaryTarget(londonCoords, "20", ""))
	s.Equal(http.StatusOK, w.Code)
	s.Equal(before+2, s.hits.Load())

	first := decodeJSON[[]models.WeatherSummary](s, w)
	s.Require().Len(first, 1)

	// The entries landed in redis under their namespace prefixes.
	s.hasKeyWithPrefix(mr, "forecast:")
	s.hasKeyWithPrefix(mr, "location:")

	w = get(summaryTarget(londonCoords, "20", ""))
	s.Equal(http.StatusOK, w.Code)
	s.Equal(before+2, s.hits.Load(), "repeat request must be served from redis")
	s.Equal(first, decodeJSON[[]models.WeatherSummary](s, w))

	// Past the forecast TTL the geocoded location (24 h TTL) is still
	// cached, so only the forecast is refetched.
	mr.FastForward(61 * time.Minute)

	w = get(summaryTarget(londonCoords, "20", ""))
	s.Equal(http.StatusOK, w.Code)
	s.Equal(before+3, s.hits.Load())
}

func (s *IntegrationTestSuite) hasKeyWithPrefix(mr *miniredis.Miniredis, prefix string) {
	s.T().Helper()
	for _, key := range mr.Keys() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			return
		}
	}
	s.Failf("missing redis key", "no key with prefix %q in %v", prefix, mr.Keys())
}
