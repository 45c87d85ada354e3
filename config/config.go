package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"weathersummary.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server      ServerConfig      `split_words:"true"`
	Log         LogConfig         `split_words:"true"`
	Weather     WeatherConfig     `split_words:"true"`
	Cache       CacheConfig       `split_words:"true"`
	RateLimit   RateLimitConfig   `split_words:"true"`
	Scheduler   SchedulerConfig   `split_words:"true"`
	Temperature TemperatureConfig `split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// LogConfig controls the structured logging output
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// Provider names accepted in WEATHER_PROVIDER_ORDER.
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderWeatherAPI     = "weatherapi"
)

// WeatherConfig contains settings for the upstream weather providers
type WeatherConfig struct {
	OpenWeatherMapKey     string   `envconfig:"OPENWEATHERMAP_API_KEY"`
	OpenWeatherMapBaseURL string   `envconfig:"OPENWEATHERMAP_BASE_URL" default:"https://api.openweathermap.org"`
	WeatherAPIKey         string   `envconfig:"WEATHER_API_KEY"`
	WeatherAPIBaseURL     string   `envconfig:"WEATHER_API_BASE_URL" default:"https://api.weatherapi.com/v1"`
	ProviderOrder         []string `envconfig:"WEATHER_PROVIDER_ORDER" default:"openweathermap,weatherapi"`
	RequestTimeoutSeconds int      `envconfig:"WEATHER_REQUEST_TIMEOUT_SECONDS" default:"10"`
	ForecastDays          int      `envconfig:"WEATHER_FORECAST_DAYS" default:"5"`
}

// RequestTimeout returns the bound applied to every upstream provider call.
func (w WeatherConfig) RequestTimeout() time.Duration {
	return time.Duration(w.RequestTimeoutSeconds) * time.Second
}

// Cache backend types accepted in CACHE_TYPE.
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// CacheConfig contains settings for the cache layer. Each data kind has its
// own TTL because the data ages at different rates: current conditions
// change within minutes, forecasts are revised hourly, geocoding rarely
// moves.
type CacheConfig struct {
	Type               string      `envconfig:"CACHE_TYPE" default:"memory"`
	MaxEntries         int         `envconfig:"CACHE_MAX_ENTRIES" default:"10000"`
	WeatherTTLMinutes  int         `envconfig:"CACHE_WEATHER_TTL_MINUTES" default:"15"`
	ForecastTTLMinutes int         `envconfig:"CACHE_FORECAST_TTL_MINUTES" default:"60"`
	LocationTTLMinutes int         `envconfig:"CACHE_LOCATION_TTL_MINUTES" default:"1440"`
	Redis              RedisConfig `split_words:"true"`
}

// WeatherTTL returns the current-conditions cache lifetime.
func (c CacheConfig) WeatherTTL() time.Duration {
	return time.Duration(c.WeatherTTLMinutes) * time.Minute
}

// ForecastTTL returns the forecast cache lifetime.
func (c CacheConfig) ForecastTTL() time.Duration {
	return time.Duration(c.ForecastTTLMinutes) * time.Minute
}

// LocationTTL returns the location metadata cache lifetime.
func (c CacheConfig) LocationTTL() time.Duration {
	return time.Duration(c.LocationTTLMinutes) * time.Minute
}

// RedisConfig contains redis connection settings used when CACHE_TYPE=redis
type RedisConfig struct {
	Addr                string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password            string `envconfig:"REDIS_PASSWORD"`
	DB                  int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeoutSeconds  int    `envconfig:"REDIS_DIAL_TIMEOUT_SECONDS" default:"5"`
	ReadTimeoutSeconds  int    `envconfig:"REDIS_READ_TIMEOUT_SECONDS" default:"3"`
	WriteTimeoutSeconds int    `envconfig:"REDIS_WRITE_TIMEOUT_SECONDS" default:"3"`
}

// RateLimitConfig sizes the token buckets guarding upstream quota. The
// layered mode runs three buckets (global daily, per-client hourly, short
// burst window) and admits a request only when all three do.
type RateLimitConfig struct {
	Enabled              bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Layered              bool `envconfig:"RATE_LIMIT_LAYERED" default:"true"`
	GlobalCapacity       int  `envconfig:"RATE_LIMIT_GLOBAL_CAPACITY" default:"1000"`
	GlobalWindowMinutes  int  `envconfig:"RATE_LIMIT_GLOBAL_WINDOW_MINUTES" default:"1440"`
	ClientCapacity       int  `envconfig:"RATE_LIMIT_CLIENT_CAPACITY" default:"100"`
	ClientWindowMinutes  int  `envconfig:"RATE_LIMIT_CLIENT_WINDOW_MINUTES" default:"60"`
	BurstCapacity        int  `envconfig:"RATE_LIMIT_BURST_CAPACITY" default:"10"`
	BurstWindowMinutes   int  `envconfig:"RATE_LIMIT_BURST_WINDOW_MINUTES" default:"5"`
}

// GlobalWindow returns the refill window of the global bucket.
func (r RateLimitConfig) GlobalWindow() time.Duration {
	return time.Duration(r.GlobalWindowMinutes) * time.Minute
}

// ClientWindow returns the refill window of each per-client bucket.
func (r RateLimitConfig) ClientWindow() time.Duration {
	return time.Duration(r.ClientWindowMinutes) * time.Minute
}

// BurstWindow returns the refill window of the burst bucket.
func (r RateLimitConfig) BurstWindow() time.Duration {
	return time.Duration(r.BurstWindowMinutes) * time.Minute
}

// SchedulerConfig contains settings for the cache prewarm job
type SchedulerConfig struct {
	PrewarmIntervalMinutes int    `envconfig:"SCHEDULER_PREWARM_MINUTES" default:"30"`
	FavoriteLocations      string `envconfig:"SCHEDULER_FAVORITE_LOCATIONS"`
}

// PrewarmInterval returns how often the prewarm job runs; zero disables it.
func (s SchedulerConfig) PrewarmInterval() time.Duration {
	return time.Duration(s.PrewarmIntervalMinutes) * time.Minute
}

// TemperatureConfig carries the optional plausibility ceiling applied to
// caller-supplied thresholds. Zero leaves only the absolute-zero floor.
type TemperatureConfig struct {
	CeilingCelsius float64 `envconfig:"TEMPERATURE_CEILING_CELSIUS" default:"0"`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.Temperature.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// Validate checks log configuration
func (l *LogConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return errors.NewConfigurationError("LOG_LEVEL must be one of: debug, info, warn, error", nil)
	}
}

// Validate checks weather provider configuration
func (w *WeatherConfig) Validate() error {
	if len(w.ProviderOrder) == 0 {
		return errors.NewConfigurationError("WEATHER_PROVIDER_ORDER cannot be empty", nil)
	}
	for _, name := range w.ProviderOrder {
		switch name {
		case ProviderOpenWeatherMap, ProviderWeatherAPI:
		default:
			return errors.NewConfigurationError(
				fmt.Sprintf("WEATHER_PROVIDER_ORDER contains unknown provider %q", name), nil)
		}
	}
	if err := validateBaseURL("OPENWEATHERMAP_BASE_URL", w.OpenWeatherMapBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("WEATHER_API_BASE_URL", w.WeatherAPIBaseURL); err != nil {
		return err
	}
	if w.RequestTimeoutSeconds < 1 {
		return errors.NewConfigurationError("WEATHER_REQUEST_TIMEOUT_SECONDS must be at least 1", nil)
	}
	if w.ForecastDays < 1 || w.ForecastDays > 14 {
		return errors.NewConfigurationError("WEATHER_FORECAST_DAYS must be between 1 and 14", nil)
	}
	return nil
}

func validateBaseURL(name, value string) error {
	if value == "" {
		return errors.NewConfigurationError(name+" cannot be empty", nil)
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return errors.NewConfigurationError(name+" must start with http:// or https://", nil)
	}
	return nil
}

// Validate checks cache configuration
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case CacheTypeMemory, CacheTypeRedis:
	default:
		return errors.NewConfigurationError(
			fmt.Sprintf("CACHE_TYPE must be %q or %q", CacheTypeMemory, CacheTypeRedis), nil)
	}
	if c.MaxEntries < 1 {
		return errors.NewConfigurationError("CACHE_MAX_ENTRIES must be at least 1", nil)
	}
	if c.WeatherTTLMinutes < 1 || c.ForecastTTLMinutes < 1 || c.LocationTTLMinutes < 1 {
		return errors.NewConfigurationError("cache TTLs must be at least 1 minute", nil)
	}
	if c.Type == CacheTypeRedis {
		if c.Redis.Addr == "" {
			return errors.NewConfigurationError("REDIS_ADDR cannot be empty when CACHE_TYPE=redis", nil)
		}
		if c.Redis.DialTimeoutSeconds < 1 || c.Redis.ReadTimeoutSeconds < 1 || c.Redis.WriteTimeoutSeconds < 1 {
			return errors.NewConfigurationError("redis timeouts must be at least 1 second", nil)
		}
	}
	return nil
}

// Validate checks rate limiter configuration
func (r *RateLimitConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.GlobalCapacity < 1 || r.ClientCapacity < 1 || r.BurstCapacity < 1 {
		return errors.NewConfigurationError("rate limit capacities must be at least 1", nil)
	}
	if r.GlobalWindowMinutes < 1 || r.ClientWindowMinutes < 1 || r.BurstWindowMinutes < 1 {
		return errors.NewConfigurationError("rate limit windows must be at least 1 minute", nil)
	}
	return nil
}

// Validate checks scheduler configuration
func (s *SchedulerConfig) Validate() error {
	if s.PrewarmIntervalMinutes < 0 {
		return errors.NewConfigurationError("SCHEDULER_PREWARM_MINUTES cannot be negative", nil)
	}
	if s.PrewarmIntervalMinutes > 10080 {
		return errors.NewConfigurationError("SCHEDULER_PREWARM_MINUTES cannot exceed 10080 minutes (7 days)", nil)
	}
	return nil
}

// Validate checks the temperature ceiling
func (t *TemperatureConfig) Validate() error {
	if t.CeilingCelsius < 0 {
		return errors.NewConfigurationError("TEMPERATURE_CEILING_CELSIUS cannot be negative", nil)
	}
	return nil
}
