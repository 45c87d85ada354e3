package integration

import (
	"net/http"

	"weathersummary.app/models"
)

func (s *IntegrationTestSuite) TestSummary_IncludesOnlyLocationsAboveThreshold() {
	w := s.get(summaryTarget(londonCoords+","+parisCoords, "20", "celsius"), "summary-basic")

	s.Equal(http.StatusOK, w.Code)

	summaries := decodeJSON[[]models.WeatherSummary](s, w)
	s.Require().Len(summaries, 1, "only London's 25 C beats the 20 C threshold")

	row := summaries[0]
	s.Equal(londonCoords, row.LocationID)
	s.Equal("London", row.LocationName)
	s.Equal("GB", row.Country)
	s.InDelta(25.0, row.TomorrowMaxTemperature, 0.01)
	s.Equal("celsius", row.TemperatureUnit)
	s.Equal("scattered clouds", row.WeatherDescription)
}

func (s *IntegrationTestSuite) TestSummary_HighThresholdYieldsEmptyList() {
	w := s.get(summaryTarget(londonCoords+","+parisCoords, "30", ""), "summary-empty")

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq("[]", w.Body.String())
}

func (s *IntegrationTestSuite) TestSummary_FahrenheitThreshold() {
	// London's tomorrow max is 25 C = 77 F. The comparison is strict, so a
	// 77 F threshold excludes it while 70 F admits it.
	w := s.get(summaryTarget(londonCoords, "77", "fahrenheit"), "summary-f-equal")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq("[]", w.Body.String())

	w = s.get(summaryTarget(londonCoords, "70", "fahrenheit"), "summary-f-above")
	s.Equal(http.StatusOK, w.Code)

	summaries := decodeJSON[[]models.WeatherSummary](s, w)
	s.Require().Len(summaries, 1)
	s.InDelta(77.0, summaries[0].TomorrowMaxTemperature, 0.01)
	s.Equal("fahrenheit", summaries[0].TemperatureUnit)
}

func (s *IntegrationTestSuite) TestSummary_MalformedCoordinatesNeverReachUpstream() {
	before := s.hits.Load()

	w := s.get(summaryTarget("51.5074", "20", ""), "summary-malformed")

	s.Equal(http.StatusBadRequest, w.Code)

	response := decodeJSON[models.ErrorResponse](s, w)
	s.Equal("odd_coordinate_count", response.Reason)
	s.Equal(before, s.hits.Load(), "validation failures must not consume upstream calls")
}

func (s *IntegrationTestSuite) TestSummary_InvalidThresholdRejected() {
	w := s.get(summaryTarget(londonCoords, "warm", ""), "summary-threshold")

	s.Equal(http.StatusBadRequest, w.Code)

	response := decodeJSON[models.ErrorResponse](s, w)
	s.Equal("invalid_threshold", response.Reason)
}

func (s *IntegrationTestSuite) TestSummary_PartialUpstreamFailureSkipsLocation() {
	w := s.get(summaryTarget(brokenCoords+","+londonCoords, "20", ""), "summary-partial")

	s.Equal(http.StatusOK, w.Code)

	summaries := decodeJSON[[]models.WeatherSummary](s, w)
	s.Require().Len(summaries, 1, "the failing location is skipped, not fatal")
	s.Equal("London", summaries[0].LocationName)
}

func (s *IntegrationTestSuite) TestSummary_UnmappedLocationDegradesToCoordinates() {
	w := s.get(summaryTarget(unmappedCoords, "20", ""), "summary-degraded")

	s.Equal(http.StatusOK, w.Code)

	summaries := decodeJSON[[]models.WeatherSummary](s, w)
	s.Require().Len(summaries, 1)

	// Geocoding found nothing, so the coordinate string stands in for the
	// name and the country stays empty.
	s.Equal(unmappedCoords, summaries[0].LocationName)
	s.Empty(summaries[0].Country)
	s.InDelta(22.0, summaries[0].TomorrowMaxTemperature, 0.01)
}

func (s *IntegrationTestSuite) TestSummary_OrderFollowsRequest() {
	// Paris first, London second, threshold low enough for both.
	w := s.get(summaryTarget(parisCoords+","+londonCoords, "10", ""), "summary-order")

	s.Equal(http.StatusOK, w.Code)

	summaries := decodeJSON[[]models.WeatherSummary](s, w)
	s.Require().Len(summaries, 2)
	s.Equal("Paris", summaries[0].LocationName)
	s.Equal("London", summaries[1].LocationName)
}
