package providers

import (
	"fmt"
	"log/slog"
	"strings"

	"weathersummary.app/config"
	"weathersummary.app/errors"
	"weathersummary.app/metrics"
)

// Manager builds the configured upstream clients and hands the repository a
// single WeatherProvider backed by the fallback chain. Providers without an
// API key are skipped with a warning so a single-key deployment still works;
// an order naming an unknown provider is a configuration error.
type Manager struct {
	chain     WeatherProvider
	providers []WeatherProvider
	order     []string
}

func NewManager(cfg *config.WeatherConfig, collector *metrics.Collector) (*Manager, error) {
	built := make([]WeatherProvider, 0, len(cfg.ProviderOrder))
	order := make([]string, 0, len(cfg.ProviderOrder))

	for _, name := range cfg.ProviderOrder {
		name = strings.TrimSpace(name)

		var provider WeatherProvider
		switch name {
		case NameOpenWeatherMap:
			if cfg.OpenWeatherMapKey == "" {
				slog.Warn("provider has no API key, skipping", "provider", name)
				continue
			}
			provider = NewOpenWeatherMapProvider(cfg.OpenWeatherMapKey, cfg.OpenWeatherMapBaseURL, cfg.RequestTimeout())
		case NameWeatherAPI:
			if cfg.WeatherAPIKey == "" {
				slog.Warn("provider has no API key, skipping", "provider", name)
				continue
			}
			provider = NewWeatherAPIProvider(cfg.WeatherAPIKey, cfg.WeatherAPIBaseURL, cfg.RequestTimeout())
		default:
			return nil, errors.NewConfigurationError(fmt.Sprintf("unknown weather provider %q", name), nil)
		}

		decorated := newInstrumentedProvider(newLoggingProvider(provider), collector.ProviderMetrics(name))
		built = append(built, decorated)
		order = append(order, name)
	}

	if len(built) == 0 {
		return nil, errors.NewConfigurationError("no weather provider has an API key configured", nil)
	}

	slog.Info("weather providers configured", "order", strings.Join(order, ","))
	return &Manager{chain: newProviderChain(built...), providers: built, order: order}, nil
}

// Chain is the provider the repository should call: each operation falls
// back across the configured providers.
func (m *Manager) Chain() WeatherProvider {
	return m.chain
}

// GetProviderInfo reports the active providers and their priority for the
// health endpoint.
func (m *Manager) GetProviderInfo() map[string]string {
	info := make(map[string]string, len(m.order))
	for i, name := range m.order {
		info[name] = fmt.Sprintf("priority %d", i+1)
	}
	return info
}
