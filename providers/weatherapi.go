package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weathersummary.app/models"
)

// kphToMetersPerSecond converts WeatherAPI wind speeds to the m/s the data
// model uses everywhere.
const kphToMetersPerSecond = 1.0 / 3.6

// weatherAPINoMatchingLocation is the body-level code WeatherAPI returns
// (with HTTP 400) when the query resolves to no known place.
const weatherAPINoMatchingLocation = 1006

// WeatherAPIProvider talks to the WeatherAPI.com REST API: /current.json,
// /forecast.json and /search.json. Unlike OpenWeatherMap it reports daily
// forecast aggregates itself, so no client-side folding is needed.
type WeatherAPIProvider struct {
	apiKey  string
	baseURL string
	client  *breakerClient
}

func NewWeatherAPIProvider(apiKey, baseURL string, timeout time.Duration) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newBreakerClient(NameWeatherAPI, timeout),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return NameWeatherAPI
}

type weatherAPICondition struct {
	Text string `json:"text"`
}

func (p *WeatherAPIProvider) CurrentWeather(ctx context.Context, c models.Coordinates) (*models.WeatherData, error) {
	reply, err := p.client.get(ctx, p.endpoint("/current.json", c, nil))
	if err != nil {
		return nil, err
	}
	if reply.status != http.StatusOK {
		return nil, p.statusError(reply)
	}

	var payload struct {
		Current struct {
			TempC      float64             `json:"temp_c"`
			Humidity   float64             `json:"humidity"`
			WindKph    float64             `json:"wind_kph"`
			PressureMb float64             `json:"pressure_mb"`
			Condition  weatherAPICondition `json:"condition"`
		} `json:"current"`
	}
	if err := json.Unmarshal(reply.body, &payload); err != nil {
		return nil, p.decodeError("current weather", err)
	}

	return &models.WeatherData{
		Temperature: models.Temperature{Value: payload.Current.TempC, Unit: models.Celsius},
		Humidity:    payload.Current.Humidity,
		WindSpeed:   payload.Current.WindKph * kphToMetersPerSecond,
		Pressure:    payload.Current.PressureMb,
		Description: payload.Current.Condition.Text,
	}, nil
}

func (p *WeatherAPIProvider) Forecast(ctx context.Context, c models.Coordinates, days int) (*models.WeatherForecast, error) {
	query := url.Values{"days": {strconv.Itoa(days)}}
	reply, err := p.client.get(ctx, p.endpoint("/forecast.json", c, query))
	if err != nil {
		return nil, err
	}
	if reply.status != http.StatusOK {
		return nil, p.statusError(reply)
	}

	var payload struct {
		Location struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"location"`
		Forecast struct {
			ForecastDay []struct {
				Date string `json:"date"`
				Day  struct {
					MaxTempC    float64             `json:"maxtemp_c"`
					MinTempC    float64             `json:"mintemp_c"`
					AvgHumidity float64             `json:"avghumidity"`
					MaxWindKph  float64             `json:"maxwind_kph"`
					Condition   weatherAPICondition `json:"condition"`
				} `json:"day"`
				Hour []struct {
					PressureMb float64 `json:"pressure_mb"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := json.Unmarshal(reply.body, &payload); err != nil {
		return nil, p.decodeError("forecast", err)
	}
	if len(payload.Forecast.ForecastDay) == 0 {
		return nil, &APIError{Provider: p.Name(), Kind: KindUnknown, Message: "empty forecast response"}
	}

	forecastDays := make([]models.DailyForecast, 0, len(payload.Forecast.ForecastDay))
	for _, d := range payload.Forecast.ForecastDay {
		date, parseErr := time.Parse("2006-01-02", d.Date)
		if parseErr != nil {
			return nil, p.decodeError("forecast date", parseErr)
		}

		var pressure float64
		if len(d.Hour) > 0 {
			// The day aggregate carries no pressure; sample midday.
			pressure = d.Hour[len(d.Hour)/2].PressureMb
		}

		forecastDays = append(forecastDays, models.DailyForecast{
			Date:           date,
			TemperatureMin: models.Temperature{Value: d.Day.MinTempC, Unit: models.Celsius},
			TemperatureMax: models.Temperature{Value: d.Day.MaxTempC, Unit: models.Celsius},
			Description:    d.Day.Condition.Text,
			Humidity:       d.Day.AvgHumidity,
			WindSpeed:      d.Day.MaxWindKph * kphToMetersPerSecond,
			Pressure:       pressure,
		})
		if len(forecastDays) == days {
			break
		}
	}

	location := models.Location{
		ID:          c.ID(),
		Name:        payload.Location.Name,
		Country:     payload.Location.Country,
		Coordinates: c,
	}
	if location.Name == "" {
		location = models.LocationFromCoordinates(c)
	}

	return &models.WeatherForecast{Location: location, Days: forecastDays}, nil
}

func (p *WeatherAPIProvider) LocationDetails(ctx context.Context, c models.Coordinates) (*models.Location, error) {
	reply, err := p.client.get(ctx, p.endpoint("/search.json", c, nil))
	if err != nil {
		return nil, err
	}
	if reply.status != http.StatusOK {
		return nil, p.statusError(reply)
	}

	var places []struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(reply.body, &places); err != nil {
		return nil, p.decodeError("location search", err)
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

func (p *WeatherAPIProvider) endpoint(path string, c models.Coordinates, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", p.apiKey)
	query.Set("q", c.String())
	return p.baseURL + path + "?" + query.Encode()
}

// statusError classifies a non-200 WeatherAPI reply. The body carries its
// own error code, which distinguishes "no matching location" (a 400 on the
// wire) from genuinely bad requests.
func (p *WeatherAPIProvider) statusError(reply *upstreamResponse) *APIError {
	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(reply.body, &payload)

	if payload.Error.Code == weatherAPINoMatchingLocation {
		return &APIError{Provider: p.Name(), Kind: KindNotFound, StatusCode: reply.status, Message: payload.Error.Message}
	}
	return classifyStatus(p.Name(), reply.status, payload.Error.Message)
}

func (p *WeatherAPIProvider) decodeError(what string, cause error) *APIError {
	return &APIError{Provider: p.Name(), Kind: KindUnknown, Message: "decode " + what + " response", Cause: cause}
}

var _ WeatherProvider = (*WeatherAPIProvider)(nil)
