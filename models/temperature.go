package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Temperature validation errors.
var (
	ErrBelowAbsoluteZero       = errors.New("temperature below absolute zero")
	ErrAboveTemperatureCeiling = errors.New("temperature above configured ceiling")
	ErrUnknownTemperatureUnit  = errors.New("unknown temperature unit")
	ErrTemperatureNotFinite    = errors.New("temperature is not a finite number")
)

// TemperatureUnit is the measurement scale of a Temperature value.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "CELSIUS"
	Fahrenheit TemperatureUnit = "FAHRENHEIT"
)

// AbsoluteZeroCelsius is the lower bound for any constructible temperature.
const AbsoluteZeroCelsius = -273.15

// absoluteZeroTolerance absorbs float drift when the bound is expressed in
// Fahrenheit and converted back.
const absoluteZeroTolerance = 1e-9

// ParseTemperatureUnit maps the wire-level unit names ("celsius",
// "fahrenheit", any case) onto TemperatureUnit.
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius":
		return Celsius, nil
	case "fahrenheit":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTemperatureUnit, s)
	}
}

// Temperature is a measured value bound to a unit. Construct through
// NewTemperature so the absolute-zero invariant holds.
type Temperature struct {
	Value float64         `json:"value"`
	Unit  TemperatureUnit `json:"unit"`
}

// NewTemperature validates the unit and rejects values below -273.15 °C
// equivalent.
func NewTemperature(value float64, unit TemperatureUnit) (Temperature, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Temperature{}, fmt.Errorf("%w: %v", ErrTemperatureNotFinite, value)
	}
	switch unit {
	case Celsius, Fahrenheit:
	default:
		return Temperature{}, fmt.Errorf("%w: %q", ErrUnknownTemperatureUnit, unit)
	}

	t := Temperature{Value: value, Unit: unit}
	if t.Celsius() < AbsoluteZeroCelsius-absoluteZeroTolerance {
		return Temperature{}, fmt.Errorf("%w: %v %s", ErrBelowAbsoluteZero, value, unit)
	}
	return t, nil
}

// Celsius returns the value expressed in degrees Celsius.
func (t Temperature) Celsius() float64 {
	if t.Unit == Fahrenheit {
		return (t.Value - 32) * 5 / 9
	}
	return t.Value
}

// ToCelsius converts the temperature to the Celsius scale.
func (t Temperature) ToCelsius() Temperature {
	if t.Unit == Celsius {
		return t
	}
	return Temperature{Value: t.Celsius(), Unit: Celsius}
}

// ToFahrenheit converts the temperature to the Fahrenheit scale.
func (t Temperature) ToFahrenheit() Temperature {
	if t.Unit == Fahrenheit {
		return t
	}
	return Temperature{Value: t.Value*9/5 + 32, Unit: Fahrenheit}
}

// In converts the temperature to the given unit.
func (t Temperature) In(unit TemperatureUnit) Temperature {
	if unit == Fahrenheit {
		return t.ToFahrenheit()
	}
	return t.ToCelsius()
}

// IsAbove reports whether t is strictly warmer than other. Both sides are
// compared on the Celsius scale regardless of their units.
func (t Temperature) IsAbove(other Temperature) bool {
	return t.Celsius() > other.Celsius()
}

// TemperatureBounds is an optional upper bound applied to caller-supplied
// temperatures. A zero CeilingCelsius disables the check.
type TemperatureBounds struct {
	CeilingCelsius float64
}

// Check rejects temperatures above the configured ceiling. The absolute-zero
// floor is already enforced by NewTemperature.
func (b TemperatureBounds) Check(t Temperature) error {
	if b.CeilingCelsius == 0 {
		return nil
	}
	if t.Celsius() > b.CeilingCelsius {
		return fmt.Errorf("%w: %v °C exceeds %v °C", ErrAboveTemperatureCeiling, t.Celsius(), b.CeilingCelsius)
	}
	return nil
}
