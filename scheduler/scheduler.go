// Package scheduler implements the background cache prewarm job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"weathersummary.app/config"
	"weathersummary.app/errors"
	"weathersummary.app/models"
	"weathersummary.app/service"
)

// prewarmClientID is the rate-limiter identity of the background job. It
// shares the global quota with interactive callers but has its own
// per-client bucket.
const prewarmClientID = "scheduler"

const prewarmTimeout = 2 * time.Minute

// Scheduler periodically refreshes the caches for a configured set of
// favorite locations so consumer requests hit warm entries.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   service.WeatherSummaryServiceInterface
	favorites []models.Coordinates
	interval  time.Duration
}

// NewScheduler parses the favorite locations and prepares the prewarm job.
// A malformed favorites list is a configuration error: better to fail at
// startup than to discover it on the first pass.
func NewScheduler(cfg *config.Config, summaryService service.WeatherSummaryServiceInterface) (*Scheduler, error) {
	var favorites []models.Coordinates
	if raw := strings.TrimSpace(cfg.Scheduler.FavoriteLocations); raw != "" {
		coords, err := models.ParseCoordinatesList(raw)
		if err != nil {
			return nil, errors.NewConfigurationError("SCHEDULER_FAVORITE_LOCATIONS is not a valid coordinate list", err)
		}
		favorites = coords
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   summaryService,
		favorites: favorites,
		interval:  cfg.Scheduler.PrewarmInterval(),
	}, nil
}

// Start begins the scheduler's operations. A zero interval or an empty
// favorites list disables the prewarm job.
func (s *Scheduler) Start() error {
	if s.interval <= 0 || len(s.favorites) == 0 {
		slog.Info("Cache prewarm disabled", "interval", s.interval, "favorites", len(s.favorites))
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).StartImmediately().Do(s.prewarm); err != nil {
		return fmt.Errorf("schedule prewarm job: %w", err)
	}

	s.scheduler.StartAsync()
	slog.Info("Cache prewarm scheduled", "interval", s.interval, "favorites", len(s.favorites))
	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// prewarm walks the favorite locations through the same read path consumers
// use, filling the location, forecast and current-weather caches. A
// rate-limit rejection ends the pass: background refresh must not starve
// interactive traffic of quota.
func (s *Scheduler) prewarm() {
	ctx, cancel := context.WithTimeout(context.Background(), prewarmTimeout)
	defer cancel()

	warmed := 0
	for _, coords := range s.favorites {
		if _, err := s.service.GetLocationDetails(ctx, prewarmClientID, coords.String()); err != nil {
			if errors.IsRateLimitError(err) {
				slog.Warn("Prewarm pass stopped by rate limiter", "warmed", warmed, "total", len(s.favorites))
				return
			}
			slog.Warn("Prewarm failed for location", "coordinates", coords.String(), "error", err)
			continue
		}
		warmed++
	}

	slog.Debug("Prewarm pass complete", "warmed", warmed, "total", len(s.favorites))
}
