// Package providers implements the upstream weather API clients and the
// ordered fallback chain the repository consumes. Every client speaks the
// same coordinate-addressed contract and reports failures through the
// APIError taxonomy so callers can tell "place does not exist" from "the
// upstream is struggling".
package providers

import (
	"context"
	"strconv"

	"weathersummary.app/models"
)

// Provider names as they appear in WEATHER_PROVIDER_ORDER.
const (
	NameOpenWeatherMap = "openweathermap"
	NameWeatherAPI     = "weatherapi"
)

// WeatherProvider is the contract every upstream client implements.
// Implementations return *APIError for expected upstream failure modes and
// honor context cancellation on every call.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, c models.Coordinates) (*models.WeatherData, error)
	Forecast(ctx context.Context, c models.Coordinates, days int) (*models.WeatherForecast, error)
	LocationDetails(ctx context.Context, c models.Coordinates) (*models.Location, error)
	Name() string
}

// Operation labels shared by the logging and metrics decorators.
const (
	opCurrentWeather  = "current_weather"
	opForecast        = "forecast"
	opLocationDetails = "location_details"
)

func coordinateParam(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
