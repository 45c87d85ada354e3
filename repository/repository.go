// Package repository serves weather, forecast and location lookups with
// cache-aside semantics: read the typed cache, fall back to the provider
// chain, cache only successful results. It also translates the provider
// error taxonomy into the caller-facing one, so layers above never see an
// APIError.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"weathersummary.app/cache"
	"weathersummary.app/errors"
	"weathersummary.app/models"
	"weathersummary.app/providers"
)

// WeatherRepositoryInterface is what the service layer consumes.
type WeatherRepositoryInterface interface {
	GetCurrentWeather(ctx context.Context, location models.Location) (*models.WeatherData, error)
	GetForecast(ctx context.Context, location models.Location, days int) (*models.WeatherForecast, error)
	GetLocationByID(ctx context.Context, id string) (*models.Location, error)
	GetLocationsByIDs(ctx context.Context, ids []string) []models.Location
}

// Caches bundles the typed caches the repository owns. Each runs its own
// namespace and TTL over the shared store.
type Caches struct {
	Weather  *cache.TypedCache[models.WeatherData]
	Forecast *cache.TypedCache[models.WeatherForecast]
	Location *cache.TypedCache[models.Location]
}

// WeatherRepository composes the provider chain with the cache layer.
type WeatherRepository struct {
	provider providers.WeatherProvider
	caches   Caches
}

func NewWeatherRepository(provider providers.WeatherProvider, caches Caches) *WeatherRepository {
	return &WeatherRepository{provider: provider, caches: caches}
}

// GetCurrentWeather returns current conditions for a resolved location,
// keyed by the location's coordinate identity.
func (r *WeatherRepository) GetCurrentWeather(ctx context.Context, location models.Location) (*models.WeatherData, error) {
	data, err := r.caches.Weather.GetOrLoad(ctx, location.ID, func(ctx context.Context) (models.WeatherData, error) {
		fresh, provErr := r.provider.CurrentWeather(ctx, location.Coordinates)
		if provErr != nil {
			return models.WeatherData{}, provErr
		}
		return *fresh, nil
	})
	if err != nil {
		return nil, translateProviderError(err, "current weather")
	}
	return &data, nil
}

// GetForecast returns a forecast of up to days days. The day count is part
// of the cache key so differently sized requests do not shadow each other.
func (r *WeatherRepository) GetForecast(ctx context.Context, location models.Location, days int) (*models.WeatherForecast, error) {
	key := fmt.Sprintf("%s:%dd", location.ID, days)

	forecast, err := r.caches.Forecast.GetOrLoad(ctx, key, func(ctx context.Context) (models.WeatherForecast, error) {
		fresh, provErr := r.provider.Forecast(ctx, location.Coordinates, days)
		if provErr != nil {
			return models.WeatherForecast{}, provErr
		}
		return *fresh, nil
	})
	if err != nil {
		return nil, translateProviderError(err, "forecast")
	}
	return &forecast, nil
}

// GetLocationByID resolves a coordinate-string id into a named location.
// A malformed id comes back as the plain parse error for the service layer
// to map; provider not-found becomes errors.NotFoundError and is never
// cached.
func (r *WeatherRepository) GetLocationByID(ctx context.Context, id string) (*models.Location, error) {
	coords, err := models.ParseCoordinates(id)
	if err != nil {
		return nil, err
	}

	location, err := r.caches.Location.GetOrLoad(ctx, coords.ID(), func(ctx context.Context) (models.Location, error) {
		fresh, provErr := r.provider.LocationDetails(ctx, coords)
		if provErr != nil {
			return models.Location{}, provErr
		}
		return *fresh, nil
	})
	if err != nil {
		return nil, translateProviderError(err, "location details")
	}
	return &location, nil
}

// GetLocationsByIDs resolves each id independently. Failures are logged and
// skipped; the caller gets whatever resolved, never an error.
func (r *WeatherRepository) GetLocationsByIDs(ctx context.Context, ids []string) []models.Location {
	locations := make([]models.Location, 0, len(ids))

	for _, id := range ids {
		location, err := r.GetLocationByID(ctx, id)
		if err != nil {
			slog.Warn("skipping unresolvable location", "id", id, "error", err)
			continue
		}
		locations = append(locations, *location)
	}
	return locations
}

// translateProviderError maps the provider taxonomy onto the service one:
// not-found stays not-found, everything else is a retryable outage.
func translateProviderError(err error, what string) error {
	if providers.IsNotFound(err) {
		return errors.NewNotFoundError("location not found")
	}
	return errors.NewServiceUnavailableError(what+" is temporarily unavailable", err)
}

var _ WeatherRepositoryInterface = (*WeatherRepository)(nil)
