package service

import (
	"context"

	"weathersummary.app/models"
)

// WeatherSummaryServiceInterface defines the consumer-facing operations the
// API layer and scheduler depend on.
type WeatherSummaryServiceInterface interface {
	GetSummaryForFavorites(ctx context.Context, clientID string, req models.SummaryRequest) ([]models.WeatherSummary, error)
	GetLocationDetails(ctx context.Context, clientID, coordinate string) (*models.LocationWeatherDetails, error)
}

// Ensure implementations satisfy interfaces
var _ WeatherSummaryServiceInterface = (*WeatherSummaryService)(nil)
