package providers

import (
	"context"
	"log/slog"
	"strings"

	"weathersummary.app/models"
)

// providerChain tries providers in configured order until one answers. A
// KindNotFound reply is authoritative and stops the fallback: asking the
// next provider about a place the first already said does not exist only
// burns quota. Every other failure kind falls through; the last error wins.
type providerChain struct {
	providers []WeatherProvider
}

func newProviderChain(providers ...WeatherProvider) *providerChain {
	return &providerChain{providers: providers}
}

func (c *providerChain) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *providerChain) CurrentWeather(ctx context.Context, coords models.Coordinates) (*models.WeatherData, error) {
	return chainCall(c, opCurrentWeather, coords, func(p WeatherProvider) (*models.WeatherData, error) {
		return p.CurrentWeather(ctx, coords)
	})
}

func (c *providerChain) Forecast(ctx context.Context, coords models.Coordinates, days int) (*models.WeatherForecast, error) {
	return chainCall(c, opForecast, coords, func(p WeatherProvider) (*models.WeatherForecast, error) {
		return p.Forecast(ctx, coords, days)
	})
}

func (c *providerChain) LocationDetails(ctx context.Context, coords models.Coordinates) (*models.Location, error) {
	return chainCall(c, opLocationDetails, coords, func(p WeatherProvider) (*models.Location, error) {
		return p.LocationDetails(ctx, coords)
	})
}

func chainCall[T any](c *providerChain, operation string, coords models.Coordinates, call func(WeatherProvider) (*T, error)) (*T, error) {
	var lastErr error

	for _, p := range c.providers {
		result, err := call(p)
		if err == nil {
			return result, nil
		}
		if IsNotFound(err) {
			return nil, err
		}

		slog.Warn("provider failed, trying next",
			"provider", p.Name(),
			"operation", operation,
			"coordinates", coords.String(),
			"error", err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = &APIError{Provider: c.Name(), Kind: KindUnknown, Message: "no providers configured"}
	}
	return nil, lastErr
}

var _ WeatherProvider = (*providerChain)(nil)
