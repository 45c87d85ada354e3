package integration

import (
	"net/http"

	"weathersummary.app/models"
)

func (s *IntegrationTestSuite) TestLocationDetails_FullView() {
	w := s.get("/api/weather/locations/"+parisCoords, "details-full")

	s.Equal(http.StatusOK, w.Code)

	details := decodeJSON[models.LocationWeatherDetails](s, w)
	s.Equal("Paris", details.Location.Name)
	s.Equal("FR", details.Location.Country)
	s.Equal(parisCoords, details.Location.ID)

	s.Require().NotNil(details.Forecast)
	s.Len(details.Forecast.Days, 5)

	s.Require().NotNil(details.Current)
	s.InDelta(15.0, details.Current.Temperature.Value, 0.01)
	s.Equal("light rain", details.Current.Description)
}

func (s *IntegrationTestSuite) TestLocationDetails_UnmappedLocationIs404() {
	w := s.get("/api/weather/locations/"+unmappedCoords, "details-404")

	s.Equal(http.StatusNotFound, w.Code)

	response := decodeJSON[models.ErrorResponse](s, w)
	s.Equal("location not found", response.Error)
}

func (s *IntegrationTestSuite) TestLocationDetails_MalformedCoordinateIs400() {
	before := s.hits.Load()

	w := s.get("/api/weather/locations/nowhere", "details-400")

	s.Equal(http.StatusBadRequest, w.Code)

	response := decodeJSON[models.ErrorResponse](s, w)
	s.Equal("malformed_coordinates", response.Reason)
	s.Equal(before, s.hits.Load())
}

func (s *IntegrationTestSuite) TestLocationDetails_UpstreamOutageIs503() {
	w := s.get("/api/weather/locations/"+brokenCoords, "details-503")

	s.Equal(http.StatusServiceUnavailable, w.Code)

	response := decodeJSON[models.ErrorResponse](s, w)
	s.Equal("weather service temporarily unavailable", response.Error)
}
