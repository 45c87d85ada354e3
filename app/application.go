package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"weathersummary.app/api"
	"weathersummary.app/cache"
	"weathersummary.app/config"
	"weathersummary.app/metrics"
	"weathersummary.app/models"
	"weathersummary.app/pkg/logger"
	"weathersummary.app/providers"
	"weathersummary.app/ratelimit"
	"weathersummary.app/repository"
	"weathersummary.app/scheduler"
	"weathersummary.app/service"
)

// Application represents the main application with all its dependencies
type Application struct {
	config    *config.Config
	store     cache.Store
	server    *api.Server
	scheduler *scheduler.Scheduler
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	app.installLogger()

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

// NewApplicationWithConfig wires the application from an already validated
// configuration. Integration tests drive this directly.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	app := &Application{config: cfg}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) installLogger() {
	level, err := logger.ParseLevel(app.config.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(logger.NewWithLevel(level).Logger)
}

func (app *Application) initializeServices() error {
	slog.Info("Initializing services...")

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	store, err := cache.NewStore(app.config.Cache)
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}
	app.store = store

	// Each data kind gets its own namespace, TTL and metric label on top of
	// the shared backend.
	caches := repository.Caches{
		Weather: cache.NewTypedCache[models.WeatherData](
			cache.NewInstrumentedStore(store, collector.CacheMetrics("weather")),
			"weather", app.config.Cache.WeatherTTL()),
		Forecast: cache.NewTypedCache[models.WeatherForecast](
			cache.NewInstrumentedStore(store, collector.CacheMetrics("forecast")),
			"forecast", app.config.Cache.ForecastTTL()),
		Location: cache.NewTypedCache[models.Location](
			cache.NewInstrumentedStore(store, collector.CacheMetrics("location")),
			"location", app.config.Cache.LocationTTL()),
	}

	providerManager, err := providers.NewManager(&app.config.Weather, collector)
	if err != nil {
		return fmt.Errorf("create provider manager: %w", err)
	}

	repo := repository.NewWeatherRepository(providerManager.Chain(), caches)

	limiter, err := app.createLimiter(collector)
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}

	bounds := models.TemperatureBounds{CeilingCelsius: app.config.Temperature.CeilingCelsius}
	summaryService := service.NewWeatherSummaryService(repo, limiter, bounds, app.config.Weather.ForecastDays)

	app.server = api.NewServer(app.config, summaryService, providerManager.GetProviderInfo(), registry)

	sched, err := scheduler.NewScheduler(app.config, summaryService)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	app.scheduler = sched

	slog.Info("Services initialized successfully")
	return nil
}

// createLimiter builds the limiter stack guarding upstream quota.
func (app *Application) createLimiter(collector *metrics.Collector) (ratelimit.Limiter, error) {
	rl := app.config.RateLimit
	if !rl.Enabled {
		slog.Warn("Rate limiting disabled; upstream quota is unprotected")
		return ratelimit.NoopLimiter{}, nil
	}

	var limiter ratelimit.Limiter
	if rl.Layered {
		layered, err := ratelimit.NewLayeredLimiter(ratelimit.LayeredConfig{
			GlobalCapacity: rl.GlobalCapacity,
			GlobalWindow:   rl.GlobalWindow(),
			ClientCapacity: rl.ClientCapacity,
			ClientWindow:   rl.ClientWindow(),
			BurstCapacity:  rl.BurstCapacity,
			BurstWindow:    rl.BurstWindow(),
		})
		if err != nil {
			return nil, err
		}
		limiter = layered
	} else {
		single, err := ratelimit.NewSingleLimiter(rl.GlobalCapacity, rl.GlobalWindow())
		if err != nil {
			return nil, err
		}
		limiter = single
	}

	return ratelimit.NewInstrumentedLimiter(limiter, collector.RateLimitMetrics()), nil
}

// Start starts the application and blocks serving HTTP until shutdown.
func (app *Application) Start() error {
	slog.Info("Starting application...")

	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			slog.Warn("Error shutting down HTTP server", "error", err)
		}
	}

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			slog.Warn("Error closing cache store", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}

// Router exposes the HTTP handler for in-process tests.
func (app *Application) Router() *gin.Engine {
	return app.server.GetRouter()
}
