package app

import (
	"log"
	"os"
	"sort"
	"strings"

	"weathersummary.app/config"
)

// ConfigDisplayer handles configuration and environment variable display
type ConfigDisplayer struct{}

// NewConfigDisplayer creates a new configuration displayer
func NewConfigDisplayer() *ConfigDisplayer {
	return &ConfigDisplayer{}
}

// PrintConfig prints all fields in the configuration
func (cd *ConfigDisplayer) PrintConfig(cfg *config.Config) {
	log.Println("==== APPLICATION CONFIGURATION ====")

	log.Printf("SERVER:\n")
	log.Printf("  Port: %d\n", cfg.Server.Port)

	log.Printf("\nLOGGING:\n")
	log.Printf("  Level: %s\n", cfg.Log.Level)

	log.Printf("\nWEATHER PROVIDERS:\n")
	log.Printf("  OpenWeatherMap Key: %s\n", cd.maskString(cfg.Weather.OpenWeatherMapKey))
	log.Printf("  OpenWeatherMap Base URL: %s\n", cfg.Weather.OpenWeatherMapBaseURL)
	log.Printf("  WeatherAPI Key: %s\n", cd.maskString(cfg.Weather.WeatherAPIKey))
	log.Printf("  WeatherAPI Base URL: %s\n", cfg.Weather.WeatherAPIBaseURL)
	log.Printf("  Provider Order: %s\n", strings.Join(cfg.Weather.ProviderOrder, ", "))
	log.Printf("  Request Timeout: %ds\n", cfg.Weather.RequestTimeoutSeconds)
	log.Printf("  Forecast Days: %d\n", cfg.Weather.ForecastDays)

	log.Printf("\nCACHE:\n")
	log.Printf("  Type: %s\n", cfg.Cache.Type)
	log.Printf("  Max Entries: %d\n", cfg.Cache.MaxEntries)
	log.Printf("  Weather TTL: %d minutes\n", cfg.Cache.WeatherTTLMinutes)
	log.Printf("  Forecast TTL: %d minutes\n", cfg.Cache.ForecastTTLMinutes)
	log.Printf("  Location TTL: %d minutes\n", cfg.Cache.LocationTTLMinutes)
	if cfg.Cache.Type == config.CacheTypeRedis {
		log.Printf("  Redis Addr: %s\n", cfg.Cache.Redis.Addr)
		log.Printf("  Redis Password: %s\n", cd.maskString(cfg.Cache.Redis.Password))
		log.Printf("  Redis DB: %d\n", cfg.Cache.Redis.DB)
	}

	log.Printf("\nRATE LIMIT:\n")
	log.Printf("  Enabled: %t\n", cfg.RateLimit.Enabled)
	log.Printf("  Layered: %t\n", cfg.RateLimit.Layered)
	log.Printf("  Global: %d per %d minutes\n", cfg.RateLimit.GlobalCapacity, cfg.RateLimit.GlobalWindowMinutes)
	log.Printf("  Client: %d per %d minutes\n", cfg.RateLimit.ClientCapacity, cfg.RateLimit.ClientWindowMinutes)
	log.Printf("  Burst: %d per %d minutes\n", cfg.RateLimit.BurstCapacity, cfg.RateLimit.BurstWindowMinutes)

	log.Printf("\nSCHEDULER:\n")
	log.Printf("  Prewarm Interval: %d minutes\n", cfg.Scheduler.PrewarmIntervalMinutes)
	log.Printf("  Favorite Locations: %s\n", cfg.Scheduler.FavoriteLocations)

	log.Printf("\nTEMPERATURE:\n")
	log.Printf("  Threshold Ceiling: %g C\n", cfg.Temperature.CeilingCelsius)

	log.Println("===================================")
}

// PrintAllEnvVars prints all environment variables available to the application
func (cd *ConfigDisplayer) PrintAllEnvVars() {
	log.Println("==== ENVIRONMENT VARIABLES ====")

	envVars := os.Environ()
	sort.Strings(envVars)

	for _, env := range envVars {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}

		key := pair[0]
		value := pair[1]

		if cd.isSensitive(key) {
			value = cd.maskString(value)
		}

		log.Printf("%s=%s\n", key, value)
	}

	log.Println("===============================")
}

// maskString masks sensitive information like passwords and API keys
func (cd *ConfigDisplayer) maskString(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	visible := len(s) / 4
	return s[:visible] + strings.Repeat("*", len(s)-visible)
}

// isSensitive checks if an environment variable key is considered sensitive
func (cd *ConfigDisplayer) isSensitive(key string) bool {
	sensitiveKeys := []string{
		"API_KEY", "PASSWORD", "SECRET", "TOKEN", "KEY", "PASS", "PWD",
	}

	key = strings.ToUpper(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(key, sensitive) {
			return true
		}
	}

	return false
}
