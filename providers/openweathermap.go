package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weathersummary.app/models"
)

// OpenWeatherMapProvider talks to the OpenWeatherMap REST API: current
// conditions and the 3-hourly forecast under /data/2.5, reverse geocoding
// under /geo/1.0. The forecast endpoint has no daily granularity, so the
// 3-hourly entries are folded into calendar days here.
type OpenWeatherMapProvider struct {
	apiKey  string
	baseURL string
	client  *breakerClient
}

func NewOpenWeatherMapProvider(apiKey, baseURL string, timeout time.Duration) *OpenWeatherMapProvider {
	return &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newBreakerClient(NameOpenWeatherMap, timeout),
	}
}

func (p *OpenWeatherMapProvider) Name() string {
	return NameOpenWeatherMap
}

type owmConditions struct {
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt int64 `json:"dt"`
}

func (c owmConditions) description() string {
	if len(c.Weather) == 0 {
		return ""
	}
	return c.Weather[0].Description
}

func (p *OpenWeatherMapProvider) CurrentWeather(ctx context.Context, c models.Coordinates) (*models.WeatherData, error) {
	reply, err := p.client.get(ctx, p.endpoint("/data/2.5/weather", c, nil))
	if err != nil {
		return nil, err
	}
	if reply.status != http.StatusOK {
		return nil, classifyStatus(p.Name(), reply.status, owmErrorMessage(reply.body))
	}

	var payload owmConditions
	if err := json.Unmarshal(reply.body, &payload); err != nil {
		return nil, p.decodeError("current weather", err)
	}

	return &models.WeatherData{
		Temperature: models.Temperature{Value: payload.Main.Temp, Unit: models.Celsius},
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Pressure:    payload.Main.Pressure,
		Description: payload.description(),
	}, nil
}

func (p *OpenWeatherMapProvider) Forecast(ctx context.Context, c models.Coordinates, days int) (*models.WeatherForecast, error) {
	reply, err := p.client.get(ctx, p.endpoint("/data/2.5/forecast", c, nil))
	if err != nil {
		return nil, err
	}
	if reply.status != http.StatusOK {
		return nil, classifyStatus(p.Name(), reply.status, owmErrorMessage(reply.body))
	}

	var payload struct {
		List []owmConditions `json:"list"`
		City struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"city"`
	}
	if err := json.Unmarshal(reply.body, &payload); err != nil {
		return nil, p.decodeError("forecast", err)
	}
	if len(payload.List) == 0 {
		return nil, &APIError{Provider: p.Name(), Kind: KindUnknown, Message: "empty forecast response"}
	}

	location := models.Location{
		ID:          c.ID(),
		Name:        payload.City.Name,
		Country:     payload.City.Country,
		Coordinates: c,
	}
	if location.Name == "" {
		location = models.LocationFromCoordinates(c)
	}

	return &models.WeatherForecast{
		Location: location,
		Days:     aggregateDaily(payload.List, days),
	}, nil
}

func (p *OpenWeatherMapProvider) LocationDetails(ctx context.Context, c models.Coordinates) (*models.Location, error) {
	query := url.Values{"limit": {"1"}}
	reply, err := p.client.get(ctx, p.endpoint("/geo/1.0/reverse", c, query))
	if err != nil {
		return nil, err
	}
	if reply.status != http.StatusOK {
		return nil, classifyStatus(p.Name(), reply.status, owmErrorMessage(reply.body))
	}

	var places []struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(reply.body, &places); err != nil {
		return nil, p.decodeError("location details", err)
	}
	if len(places) == 0 {
		return nil, &APIError{Provider: p.Name(), Kind: KindNotFound, StatusCode: reply.status, Message: "no matching location"}
	}

	return &models.Location{
		ID:          c.ID(),
		Name:        places[0].Name,
		Country:     places[0].Country,
		Coordinates: c,
	}, nil
}

func (p *OpenWeatherMapProvider) endpoint(path string, c models.Coordinates, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("lat", coordinateParam(c.Latitude))
	query.Set("lon", coordinateParam(c.Longitude))
	query.Set("units", "metric")
	query.Set("appid", p.apiKey)
	return p.baseURL + path + "?" + query.Encode()
}

func (p *OpenWeatherMapProvider) decodeError(what string, cause error) *APIError {
	return &APIError{Provider: p.Name(), Kind: KindUnknown, Message: "decode " + what + " response", Cause: cause}
}

// owmErrorMessage pulls the human-readable message out of an OpenWeatherMap
// error body, e.g. {"cod":"404","message":"city not found"}.
func owmErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// aggregateDaily folds chronological 3-hourly entries into calendar days
// (UTC): extremes over the day's temperature range, daily means for humidity
// and pressure, the strongest wind, and the description sampled closest to
// midday. At most days entries are returned.
func aggregateDaily(entries []owmConditions, days int) []models.DailyForecast {
	type accumulator struct {
		min, max    float64
		humiditySum float64
		pressureSum float64
		wind        float64
		count       int
		description string
		middayGap  time.Duration
	}

	buckets := make(map[time.Time]*accumulator)
	order := make([]time.Time, 0, days)

	for _, entry := range entries {
		ts := time.Unix(entry.Dt, 0).UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)

		acc, ok := buckets[day]
		if !ok {
			acc = &accumulator{min: entry.Main.TempMin, max: entry.Main.TempMax, middayGap: 1<<63 - 1}
			buckets[day] = acc
			order = append(order, day)
		}

		if entry.Main.TempMin < acc.min {
			acc.min = entry.Main.TempMin
		}
		if entry.Main.TempMax > acc.max {
			acc.max = entry.Main.TempMax
		}
		if entry.Wind.Speed > acc.wind {
			acc.wind = entry.Wind.Speed
		}
		acc.humiditySum += entry.Main.Humidity
		acc.pressureSum += entry.Main.Pressure
		acc.count++

		gap := ts.Sub(day.Add(12 * time.Hour))
		if gap < 0 {
			gap = -gap
		}
		if gap < acc.middayGap {
			acc.middayGap = gap
			acc.description = entry.description()
		}
	}

	result := make([]models.DailyForecast, 0, len(order))
	for _, day := range order {
		acc := buckets[day]
		result = append(result, models.DailyForecast{
			Date:           day,
			TemperatureMin: models.Temperature{Value: acc.min, Unit: models.Celsius},
			TemperatureMax: models.Temperature{Value: acc.max, Unit: models.Celsius},
			Description:    acc.description,
			Humidity:       acc.humiditySum / float64(acc.count),
			WindSpeed:      acc.wind,
			Pressure:       acc.pressureSum / float64(acc.count),
		})
		if len(result) == days {
			break
		}
	}
	return result
}

var _ WeatherProvider = (*OpenWeatherMapProvider)(nil)
