package providers

import (
	"context"
	"log/slog"
	"time"

	"weathersummary.app/models"
)

// loggingProvider wraps a WeatherProvider so every upstream call leaves a
// log line with its operation, coordinates and duration.
type loggingProvider struct {
	next WeatherProvider
}

func newLoggingProvider(next WeatherProvider) *loggingProvider {
	return &loggingProvider{next: next}
}

func (d *loggingProvider) Name() string {
	return d.next.Name()
}

func (d *loggingProvider) CurrentWeather(ctx context.Context, c models.Coordinates) (*models.WeatherData, error) {
	start := time.Now()
	data, err := d.next.CurrentWeather(ctx, c)
	d.log(opCurrentWeather, c, start, err)
	return data, err
}

func (d *loggingProvider) Forecast(ctx context.Context, c models.Coordinates, days int) (*models.WeatherForecast, error) {
	start := time.Now()
	forecast, err := d.next.Forecast(ctx, c, days)
	d.log(opForecast, c, start, err)
	return forecast, err
}

func (d *loggingProvider) LocationDetails(ctx context.Context, c models.Coordinates) (*models.Location, error) {
	start := time.Now()
	location, err := d.next.LocationDetails(ctx, c)
	d.log(opLocationDetails, c, start, err)
	return location, err
}

func (d *loggingProvider) log(operation string, c models.Coordinates, start time.Time, err error) {
	if err != nil {
		slog.Warn("provider call failed",
			"provider", d.next.Name(),
			"operation", operation,
			"coordinates", c.String(),
			"duration", time.Since(start),
			"error", err)
		return
	}

	slog.Debug("provider call completed",
		"provider", d.next.Name(),
		"operation", operation,
		"coordinates", c.String(),
		"duration", time.Since(start))
}

var _ WeatherProvider = (*loggingProvider)(nil)
