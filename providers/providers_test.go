package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathersummary.app/models"
)

func testCoordinates(t *testing.T) models.Coordinates {
	t.Helper()
	c, err := models.NewCoordinates(51.5074, -0.1278)
	require.NoError(t, err)
	return c
}

func TestOpenWeatherMapProvider_CurrentWeather(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/2.5/weather", r.URL.Path)
		gotQuery = map[string]string{
			"lat":   r.URL.Query().Get("lat"),
			"lon":   r.URL.Query().Get("lon"),
			"appid": r.URL.Query().Get("appid"),
			"units": r.URL.Query().Get("units"),
		}
		fmt.Fprint(w, `{"main":{"temp":21.5,"humidity":60,"pressure":1012},"wind":{"speed":3.4},"weather":[{"description":"clear sky"}]}`)
	}))
	defer server.Close()

	provider := NewOpenWeatherMapProvider("test-key", server.URL, 5*time.Second)
	data, err := provider.CurrentWeather(context.Background(), testCoordinates(t))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"lat":   "51.5074",
		"lon":   "-0.1278",
		"appid": "test-key",
		"units": "metric",
	}, gotQuery)

	assert.Equal(t, models.Temperature{Value: 21.5, Unit: models.Celsius}, data.Temperature)
	assert.Equal(t, 60.0, data.Humidity)
	assert.Equal(t, 3.4, data.WindSpeed)
	assert.Equal(t, 1012.0, data.Pressure)
	assert.Equal(t, "clear sky", data.Description)
}

func TestOpenWeatherMapProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind ErrorKind
	}{
		{"invalid key", http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, KindInvalidKey},
		{"forbidden", http.StatusForbidden, `{}`, KindInvalidKey},
		{"not found", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, KindNotFound},
		{"rate limited", http.StatusTooManyRequests, `{"cod":429,"message":"quota exceeded"}`, KindRateLimited},
		{"server error", http.StatusInternalServerError, `{}`, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			provider := NewOpenWeatherMapProvider("test-key", server.URL, 5*time.Second)
			_, err := provider.CurrentWeather(context.Background(), testCoordinates(t))
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, NameOpenWeatherMap, apiErr.Provider)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestOpenWeatherMapProvider_TransportErrorIsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	provider := NewOpenWeatherMapProvider("test-key", server.URL, time.Second)
	_, err := provider.CurrentWeather(context.Background(), testCoordinates(t))
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestOpenWeatherMapProvider_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewOpenWeatherMapProvider("test-key", server.URL, 5*time.Second)
	ctx := context.Background()
	coords := testCoordinates(t)

	// gobreaker trips after more than five consecutive failures.
	for i := 0; i < 6; i++ {
		_, err := provider.CurrentWeather(ctx, coords)
		require.Error(t, err)
		assert.Equal(t, KindUnknown, KindOf(err))
	}
	require.Equal(t, 6, hits)

	_, err := provider.CurrentWeather(ctx, coords)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err), "open breaker reports as a network failure")
	assert.Equal(t, 6, hits, "open breaker short-circuits before the upstream")
}

func TestOpenWeatherMapProvider_ForecastAggregatesDays(t *testing.T) {
	day1 := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	entry := func(ts time.Time, tempMin, tempMax, humidity, pressure, wind float64, desc string) map[string]interface{} {
		return map[string]interface{}{
			"dt": ts.Unix(),
			"main": map[string]float64{
				"temp_min": tempMin,
				"temp_max": tempMax,
				"humidity": humidity,
				"pressure": pressure,
			},
			"wind":    map[string]float64{"speed": wind},
			"weather": []map[string]string{{"description": desc}},
		}
	}

	payload := map[string]interface{}{
		"list": []map[string]interface{}{
			entry(day1.Add(9*time.Hour), 10, 12, 60, 1010, 2, "light rain"),
			entry(day1.Add(12*time.Hour), 12, 15, 55, 1012, 5, "scattered clouds"),
			entry(day1.Add(15*time.Hour), 11, 14, 50, 1014, 3, "clear sky"),
			entry(day2.Add(12*time.Hour), 8, 9, 70, 1000, 4, "rain"),
		},
		"city": map[string]string{"name": "London", "country": "GB"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/2.5/forecast", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	defer server.Close()

	provider := NewOpenWeatherMapProvider("test-key", server.URL, 5*time.Second)
	coords := testCoordinates(t)

	forecast, err := provider.Forecast(context.Background(), coords, 5)
	require.NoError(t, err)

	assert.Equal(t, "London", forecast.Location.Name)
	assert.Equal(t, "GB", forecast.Location.Country)
	assert.Equal(t, coords.ID(), forecast.Location.ID)

	require.Len(t, forecast.Days, 2)
	first := forecast.Days[0]
	assert.Equal(t, day1, first.Date)
	assert.Equal(t, 10.0, first.TemperatureMin.Value)
	assert.Equal(t, 15.0, first.TemperatureMax.Value)
	assert.Equal(t, "scattered clouds", first.Description, "description sampled closest to midday")
	assert.InDelta(t, 55.0, first.Humidity, 1e-9)
	assert.InDelta(t, 1012.0, first.Pressure, 1e-9)
	assert.Equal(t, 5.0, first.WindSpeed)

	assert.Equal(t, day2, forecast.Days[1].Date)

	capped, err := provider.Forecast(context.Background(), coords, 1)
	require.NoError(t, err)
	assert.Len(t, capped.Days, 1)
}

func TestOpenWeatherMapProvider_LocationDetails(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/geo/1.0/reverse", r.URL.Path)
			require.Equal(t, "1", r.URL.Query().Get("limit"))
			fmt.Fprint(w, `[{"name":"London","country":"GB"}]`)
		}))
		defer server.Close()

		provider := NewOpenWeatherMapProvider("test-key", server.URL, 5*time.Second)
		coords := testCoordinates(t)

		location, err := provider.LocationDetails(context.Background(), coords)
		require.NoError(t, err)
		assert.Equal(t, "London", location.Name)
		assert.Equal(t, "GB", location.Country)
		assert.Equal(t, coords.ID(), location.ID)
		assert.Equal(t, coords, location.Coordinates)
	})

	t.Run("empty reply is not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[]`)
		}))
		defer server.Close()

		provider := NewOpenWeatherMapProvider("test-key", server.URL, 5*time.Second)
		_, err := provider.LocationDetails(context.Background(), testCoordinates(t))
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestWeatherAPIProvider_CurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/current.json", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.Equal(t, "51.5074,-0.1278", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"current":{"temp_c":21.5,"humidity":60,"wind_kph":10.8,"pressure_mb":1012,"condition":{"text":"Sunny"}}}`)
	}))
	defer server.Close()

	provider := NewWeatherAPIProvider("test-key", server.URL, 5*time.Second)
	data, err := provider.CurrentWeather(context.Background(), testCoordinates(t))
	require.NoError(t, err)

	assert.Equal(t, models.Temperature{Value: 21.5, Unit: models.Celsius}, data.Temperature)
	assert.InDelta(t, 3.0, data.WindSpeed, 1e-9, "wind converted from km/h to m/s")
	assert.Equal(t, 1012.0, data.Pressure)
	assert.Equal(t, "Sunny", data.Description)
}

func TestWeatherAPIProvider_NoMatchingLocationIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":1006,"message":"No matching location found."}}`)
	}))
	defer server.Close()

	provider := NewWeatherAPIProvider("test-key", server.URL, 5*time.Second)
	_, err := provider.CurrentWeather(context.Background(), testCoordinates(t))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No matching location found.", apiErr.Message)
}

func TestWeatherAPIProvider_Forecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forecast.json", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("days"))
		fmt.Fprint(w, `{
			"location":{"name":"London","country":"United Kingdom"},
			"forecast":{"forecastday":[
				{"date":"2025-03-11",
				 "day":{"maxtemp_c":25,"mintemp_c":14,"avghumidity":55,"maxwind_kph":18,"condition":{"text":"Partly cloudy"}},
				 "hour":[{"pressure_mb":1010},{"pressure_mb":1015},{"pressure_mb":1020}]}
			]}
		}`)
	}))
	defer server.Close()

	provider := NewWeatherAPIProvider("test-key", server.URL, 5*time.Second)
	forecast, err := provider.Forecast(context.Background(), testCoordinates(t), 3)
	require.NoError(t, err)

	assert.Equal(t, "London", forecast.Location.Name)
	require.Len(t, forecast.Days, 1)

	day := forecast.Days[0]
	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), day.Date)
	assert.Equal(t, 25.0, day.TemperatureMax.Value)
	assert.Equal(t, 14.0, day.TemperatureMin.Value)
	assert.Equal(t, "Partly cloudy", day.Description)
	assert.InDelta(t, 5.0, day.WindSpeed, 1e-9)
	assert.Equal(t, 1015.0, day.Pressure, "pressure sampled from the midday hour")
}

func TestWeatherAPIProvider_LocationDetails(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/search.json", r.URL.Path)
			fmt.Fprint(w, `[{"name":"Kyiv","country":"Ukraine"}]`)
		}))
		defer server.Close()

		provider := NewWeatherAPIProvider("test-key", server.URL, 5*time.Second)
		coords := testCoordinates(t)

		location, err := provider.LocationDetails(context.Background(), coords)
		require.NoError(t, err)
		assert.Equal(t, "Kyiv", location.Name)
		assert.Equal(t, "Ukraine", location.Country)
		assert.Equal(t, coords.ID(), location.ID)
	})

	t.Run("empty reply is not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[]`)
		}))
		defer server.Close()

		provider := NewWeatherAPIProvider("test-key", server.URL, 5*time.Second)
		_, err := provider.LocationDetails(context.Background(), testCoordinates(t))
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestProvider_MalformedBodyIsUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	}))
	defer server.Close()

	provider := NewOpenWeatherMapProvider("test-key", server.URL, 5*time.Second)
	_, err := provider.CurrentWeather(context.Background(), testCoordinates(t))
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
}
