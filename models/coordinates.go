package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate validation errors. Callers match with errors.Is to translate
// into their own error vocabulary.
var (
	ErrMalformedCoordinates = errors.New("malformed coordinates")
	ErrLatitudeOutOfRange   = errors.New("latitude out of range")
	ErrLongitudeOutOfRange  = errors.New("longitude out of range")
	ErrOddCoordinateCount   = errors.New("odd number of coordinate values")
	ErrEmptyCoordinates     = errors.New("empty coordinates list")
)

// Valid coordinate ranges in decimal degrees.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Coordinates is a geographic point in decimal degrees. Values built through
// NewCoordinates or the parse functions are always in range; two values are
// equal when both fields are equal.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinates validates the latitude/longitude ranges and returns the pair
// as a Coordinates value.
func NewCoordinates(latitude, longitude float64) (Coordinates, error) {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		return Coordinates{}, fmt.Errorf("%w: latitude is not a finite number", ErrMalformedCoordinates)
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return Coordinates{}, fmt.Errorf("%w: longitude is not a finite number", ErrMalformedCoordinates)
	}
	if latitude < MinLatitude || latitude > MaxLatitude {
		return Coordinates{}, fmt.Errorf("%w: %v not in [%v, %v]", ErrLatitudeOutOfRange, latitude, MinLatitude, MaxLatitude)
	}
	if longitude < MinLongitude || longitude > MaxLongitude {
		return Coordinates{}, fmt.Errorf("%w: %v not in [%v, %v]", ErrLongitudeOutOfRange, longitude, MinLongitude, MaxLongitude)
	}
	return Coordinates{Latitude: latitude, Longitude: longitude}, nil
}

// ParseCoordinates parses a "lat,lon" string. Exactly two numeric fields are
// required; surrounding whitespace per field is ignored.
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("%w: expected \"lat,lon\", got %q", ErrMalformedCoordinates, s)
	}

	latitude, err := parseCoordinateField(parts[0], "latitude")
	if err != nil {
		return Coordinates{}, err
	}
	longitude, err := parseCoordinateField(parts[1], "longitude")
	if err != nil {
		return Coordinates{}, err
	}

	return NewCoordinates(latitude, longitude)
}

// ParseCoordinatesList splits a flat comma-separated list of numbers into
// coordinate pairs in input order. An odd value count or an empty list is an
// error, as is any pair that fails validation.
func ParseCoordinatesList(s string) ([]Coordinates, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyCoordinates
	}

	parts := strings.Split(s, ",")
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d values", ErrOddCoordinateCount, len(parts))
	}

	coordinates := make([]Coordinates, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		latitude, err := parseCoordinateField(parts[i], "latitude")
		if err != nil {
			return nil, err
		}
		longitude, err := parseCoordinateField(parts[i+1], "longitude")
		if err != nil {
			return nil, err
		}
		pair, err := NewCoordinates(latitude, longitude)
		if err != nil {
			return nil, err
		}
		coordinates = append(coordinates, pair)
	}

	return coordinates, nil
}

func parseCoordinateField(raw, name string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrMalformedCoordinates, name, trimmed)
	}
	return value, nil
}

// String renders the pair as "lat,lon" such that ParseCoordinates returns an
// equal value.
func (c Coordinates) String() string {
	return formatCoordinate(c.Latitude) + "," + formatCoordinate(c.Longitude)
}

// ID is the canonical identity used for cache keys and location lookups.
func (c Coordinates) ID() string {
	return c.String()
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
