package providers

import (
	"context"
	"time"

	"weathersummary.app/metrics"
	"weathersummary.app/models"
)

// instrumentedProvider records one observation per upstream call, labeled by
// operation and outcome (success or the failure kind).
type instrumentedProvider struct {
	next    WeatherProvider
	metrics *metrics.ProviderMetrics
}

func newInstrumentedProvider(next WeatherProvider, m *metrics.ProviderMetrics) *instrumentedProvider {
	return &instrumentedProvider{next: next, metrics: m}
}

func (d *instrumentedProvider) Name() string {
	return d.next.Name()
}

func (d *instrumentedProvider) CurrentWeather(ctx context.Context, c models.Coordinates) (*models.WeatherData, error) {
	start := time.Now()
	data, err := d.next.CurrentWeather(ctx, c)
	d.record(opCurrentWeather, start, err)
	return data, err
}

func (d *instrumentedProvider) Forecast(ctx context.Context, c models.Coordinates, days int) (*models.WeatherForecast, error) {
	start := time.Now()
	forecast, err := d.next.Forecast(ctx, c, days)
	d.record(opForecast, start, err)
	return forecast, err
}

func (d *instrumentedProvider) LocationDetails(ctx context.Context, c models.Coordinates) (*models.Location, error) {
	start := time.Now()
	location, err := d.next.LocationDetails(ctx, c)
	d.record(opLocationDetails, start, err)
	return location, err
}

func (d *instrumentedProvider) record(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
	}
	d.metrics.RecordRequest(operation, outcome, time.Since(start).Seconds())
}

var _ WeatherProvider = (*instrumentedProvider)(nil)
