// Package models defines the domain value types and data structures used
// throughout the application.
package models

import "time"

// Location identifies a place resolvable to weather data. ID is the
// canonical coordinate string and doubles as the cache key.
type Location struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
}

// LocationFromCoordinates builds the degraded-path location used when no
// provider can name the place: the coordinate string stands in for the name.
func LocationFromCoordinates(c Coordinates) Location {
	return Location{
		ID:          c.ID(),
		Name:        c.String(),
		Coordinates: c,
	}
}

// WeatherData describes current conditions at a location.
type WeatherData struct {
	Temperature Temperature `json:"temperature"`
	Humidity    float64     `json:"humidity"`
	WindSpeed   float64     `json:"wind_speed"`
	Pressure    float64     `json:"pressure"`
	Description string      `json:"description"`
}

// DailyForecast is one calendar day of a forecast. Date is normalized to
// midnight UTC; whether it counts as "tomorrow" for a location is decided by
// the timezone package.
type DailyForecast struct {
	Date           time.Time   `json:"date"`
	TemperatureMin Temperature `json:"temperature_min"`
	TemperatureMax Temperature `json:"temperature_max"`
	Description    string      `json:"description"`
	Humidity       float64     `json:"humidity"`
	WindSpeed      float64     `json:"wind_speed"`
	Pressure       float64     `json:"pressure"`
}

// WeatherForecast is a multi-day forecast with days ordered ascending by
// date.
type WeatherForecast struct {
	Location Location        `json:"location"`
	Days     []DailyForecast `json:"days"`
}

// WeatherSummary is one row of the favorites summary: a location whose
// forecast maximum for tomorrow exceeded the caller's threshold.
type WeatherSummary struct {
	LocationID             string  `json:"location_id"`
	LocationName           string  `json:"location_name"`
	Country                string  `json:"country"`
	TomorrowMaxTemperature float64 `json:"tomorrow_max_temperature"`
	TemperatureUnit        string  `json:"temperature_unit"`
	WeatherDescription     string  `json:"weather_description"`
}

// LocationWeatherDetails is the single-location view: resolved location,
// best-effort current conditions and the multi-day forecast.
type LocationWeatherDetails struct {
	Location Location         `json:"location"`
	Current  *WeatherData     `json:"current,omitempty"`
	Forecast *WeatherForecast `json:"forecast"`
}

// SummaryRequest carries the raw consumer inputs for the favorites summary.
// Semantic validation (coordinate pairs, threshold value, unit) happens in
// the service layer.
type SummaryRequest struct {
	Locations string `json:"locations" form:"locations" binding:"required"`
	Threshold string `json:"threshold" form:"threshold" binding:"required"`
	Unit      string `json:"unit" form:"unit" binding:"omitempty,oneof=celsius fahrenheit"`
}

// ErrorResponse represents an error message structure for API responses.
// Reason, when present, is a machine-readable code for the failure class.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// HealthResponse reports service liveness and the configured providers.
type HealthResponse struct {
	Status    string            `json:"status"`
	Uptime    string            `json:"uptime"`
	Providers map[string]string `json:"providers,omitempty"`
}
