// Package service implements the consumer-facing operations: the favorites
// summary and the single-location details view. It validates inputs before
// anything touches the network, admits every upstream lookup through the
// rate limiter, and decides which forecast entry counts as "tomorrow" for
// each location.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"weathersummary.app/errors"
	"weathersummary.app/models"
	"weathersummary.app/ratelimit"
	"weathersummary.app/repository"
	"weathersummary.app/timezone"
)

// Terminal and intermediate statuses of one favorite in a summary batch.
// They drive the structured logs that make partial failures debuggable.
const (
	statusPending          = "pending"
	statusLocationResolved = "location_resolved"
	statusForecastResolved = "forecast_resolved"
	statusIncluded         = "included"
	statusExcluded         = "excluded"
	statusFailed           = "failed"
)

// WeatherSummaryService orchestrates the favorites summary: parse and
// validate the raw inputs, walk each coordinate through location and
// forecast resolution, and keep the locations whose "tomorrow" maximum is
// strictly above the caller's threshold.
type WeatherSummaryService struct {
	repo         repository.WeatherRepositoryInterface
	limiter      ratelimit.Limiter
	bounds       models.TemperatureBounds
	forecastDays int
	now          func() time.Time
}

func NewWeatherSummaryService(
	repo repository.WeatherRepositoryInterface,
	limiter ratelimit.Limiter,
	bounds models.TemperatureBounds,
	forecastDays int,
) *WeatherSummaryService {
	return &WeatherSummaryService{
		repo:         repo,
		limiter:      limiter,
		bounds:       bounds,
		forecastDays: forecastDays,
		now:          time.Now,
	}
}

// GetSummaryForFavorites resolves every favorite in input order and returns
// the rows whose tomorrow maximum beats the threshold. Validation failures
// surface before any token is consumed or upstream call made. A rate-limit
// rejection aborts the whole batch; per-location upstream failures only skip
// that location.
func (s *WeatherSummaryService) GetSummaryForFavorites(ctx context.Context, clientID string, req models.SummaryRequest) ([]models.WeatherSummary, error) {
	coordinates, threshold, err := s.parseSummaryRequest(req)
	if err != nil {
		return nil, err
	}

	nowUTC := s.now().UTC()
	summaries := make([]models.WeatherSummary, 0, len(coordinates))

	for _, coords := range coordinates {
		decision := s.limiter.Allow(clientID)
		if !decision.Allowed {
			return nil, errors.NewRateLimitError(rateLimitMessage(decision.Layer), decision.RetryAfter)
		}

		summary, status := s.summarizeLocation(ctx, coords, threshold, nowUTC)
		slog.Info("favorite processed",
			"client", clientID,
			"coordinates", coords.String(),
			"status", status)

		if status == statusIncluded {
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

// GetLocationDetails resolves one coordinate into its location, a forecast,
// and best-effort current conditions. Unlike the batch path, an unresolvable
// location or failed forecast propagates to the caller; only the current
// conditions are optional.
func (s *WeatherSummaryService) GetLocationDetails(ctx context.Context, clientID, coordinate string) (*models.LocationWeatherDetails, error) {
	coords, err := models.ParseCoordinates(coordinate)
	if err != nil {
		return nil, coordinateValidationError(err)
	}

	decision := s.limiter.Allow(clientID)
	if !decision.Allowed {
		return nil, errors.NewRateLimitError(rateLimitMessage(decision.Layer), decision.RetryAfter)
	}

	location, err := s.repo.GetLocationByID(ctx, coords.ID())
	if err != nil {
		return nil, err
	}

	forecast, err := s.repo.GetForecast(ctx, *location, s.forecastDays)
	if err != nil {
		return nil, err
	}

	details := &models.LocationWeatherDetails{Location: *location, Forecast: forecast}

	current, err := s.repo.GetCurrentWeather(ctx, *location)
	if err != nil {
		slog.Warn("current conditions unavailable", "location", location.ID, "error", err)
	} else {
		details.Current = current
	}

	return details, nil
}

// summarizeLocation walks one favorite through the pipeline and reports its
// terminal status.
func (s *WeatherSummaryService) summarizeLocation(ctx context.Context, coords models.Coordinates, threshold models.Temperature, nowUTC time.Time) (models.WeatherSummary, string) {
	status := statusPending

	location, err := s.resolveLocation(ctx, coords)
	if err != nil {
		slog.Warn("favorite skipped: location unavailable",
			"coordinates", coords.String(), "status", status, "error", err)
		return models.WeatherSummary{}, statusFailed
	}
	status = statusLocationResolved

	forecast, err := s.repo.GetForecast(ctx, *location, s.forecastDays)
	if err != nil {
		slog.Warn("favorite skipped: forecast unavailable",
			"coordinates", coords.String(), "status", status, "error", err)
		return models.WeatherSummary{}, statusFailed
	}
	status = statusForecastResolved

	tomorrow, ok := pickTomorrow(forecast.Days, coords, nowUTC)
	if !ok {
		slog.Warn("favorite skipped: empty forecast",
			"coordinates", coords.String(), "status", status)
		return models.WeatherSummary{}, statusFailed
	}

	maxTemperature := tomorrow.TemperatureMax.In(threshold.Unit)
	if !maxTemperature.IsAbove(threshold) {
		return models.WeatherSummary{}, statusExcluded
	}

	return models.WeatherSummary{
		LocationID:             location.ID,
		LocationName:           location.Name,
		Country:                location.Country,
		TomorrowMaxTemperature: maxTemperature.Value,
		TemperatureUnit:        strings.ToLower(string(maxTemperature.Unit)),
		WeatherDescription:     tomorrow.Description,
	}, statusIncluded
}

// resolveLocation returns the provider-resolved location, or the
// coordinate-derived stand-in when no provider knows the place. Outages
// propagate so the caller can skip the favorite.
func (s *WeatherSummaryService) resolveLocation(ctx context.Context, coords models.Coordinates) (*models.Location, error) {
	location, err := s.repo.GetLocationByID(ctx, coords.ID())
	if err == nil {
		return location, nil
	}
	if errors.IsNotFoundError(err) {
		degraded := models.LocationFromCoordinates(coords)
		return &degraded, nil
	}
	return nil, err
}

// pickTomorrow selects the forecast entry for the location's local tomorrow.
// The timezone-derived date match is authoritative; without one, the second
// entry stands in (the sequence usually starts with today), then the first.
func pickTomorrow(days []models.DailyForecast, coords models.Coordinates, nowUTC time.Time) (models.DailyForecast, bool) {
	for _, day := range days {
		if timezone.IsTomorrow(coords, day.Date, nowUTC) {
			return day, true
		}
	}

	switch {
	case len(days) >= 2:
		return days[1], true
	case len(days) == 1:
		return days[0], true
	default:
		return models.DailyForecast{}, false
	}
}

func (s *WeatherSummaryService) parseSummaryRequest(req models.SummaryRequest) ([]models.Coordinates, models.Temperature, error) {
	coordinates, err := models.ParseCoordinatesList(req.Locations)
	if err != nil {
		return nil, models.Temperature{}, coordinateValidationError(err)
	}

	unit := models.Celsius
	if req.Unit != "" {
		parsed, unitErr := models.ParseTemperatureUnit(req.Unit)
		if unitErr != nil {
			return nil, models.Temperature{}, errors.NewValidationReason(errors.ReasonInvalidUnit, unitErr.Error())
		}
		unit = parsed
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(req.Threshold), 64)
	if err != nil {
		return nil, models.Temperature{}, errors.NewValidationReason(
			errors.ReasonInvalidThreshold, fmt.Sprintf("threshold %q is not a number", req.Threshold))
	}

	threshold, err := models.NewTemperature(value, unit)
	if err != nil {
		return nil, models.Temperature{}, temperatureValidationError(err)
	}
	if err := s.bounds.Check(threshold); err != nil {
		return nil, models.Temperature{}, errors.NewValidationReason(errors.ReasonAboveCeiling, err.Error())
	}

	return coordinates, threshold, nil
}

// coordinateValidationError translates the models parse sentinels into
// validation errors with stable reason codes.
func coordinateValidationError(err error) *errors.AppError {
	reason := errors.ReasonMalformedCoordinates
	switch {
	case stderrors.Is(err, models.ErrEmptyCoordinates):
		reason = errors.ReasonEmptyCoordinates
	case stderrors.Is(err, models.ErrOddCoordinateCount):
		reason = errors.ReasonOddCoordinateCount
	case stderrors.Is(err, models.ErrLatitudeOutOfRange), stderrors.Is(err, models.ErrLongitudeOutOfRange):
		reason = errors.ReasonCoordinatesOutOfRange
	}
	return errors.NewValidationReason(reason, err.Error())
}

func temperatureValidationError(err error) *errors.AppError {
	reason := errors.ReasonInvalidThreshold
	switch {
	case stderrors.Is(err, models.ErrBelowAbsoluteZero):
		reason = errors.ReasonBelowAbsoluteZero
	case stderrors.Is(err, models.ErrUnknownTemperatureUnit):
		reason = errors.ReasonInvalidUnit
	}
	return errors.NewValidationReason(reason, err.Error())
}

// rateLimitMessage names the exhausted quota the way consumers see it.
func rateLimitMessage(layer string) string {
	switch layer {
	case ratelimit.LayerGlobal:
		return "daily request quota exhausted"
	case ratelimit.LayerClient:
		return "hourly client quota exhausted"
	case ratelimit.LayerBurst:
		return "burst quota exhausted, slow down"
	default:
		return "rate limit exceeded"
	}
}
