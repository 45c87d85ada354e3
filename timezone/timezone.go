// Package timezone approximates local calendar dates from longitude using
// the 15-degrees-per-hour rule. Political timezone boundaries deviate from
// this rule; the approximation is only used to bucket forecast entries into
// "today" and "tomorrow" for a location.
package timezone

import (
	"math"
	"time"

	"weathersummary.app/models"
)

const degreesPerHour = 15.0

// Real-world UTC offsets span -12:00 (Baker Island) to +14:00 (Line Islands).
const (
	minOffsetHours = -12
	maxOffsetHours = 14
)

// OffsetHours returns round(longitude / 15) clamped to [-12, +14].
func OffsetHours(c models.Coordinates) int {
	offset := int(math.Round(c.Longitude / degreesPerHour))
	if offset < minOffsetHours {
		return minOffsetHours
	}
	if offset > maxOffsetHours {
		return maxOffsetHours
	}
	return offset
}

// Today returns the local calendar date at the coordinates for the given UTC
// instant, normalized to midnight UTC.
func Today(c models.Coordinates, nowUTC time.Time) time.Time {
	local := nowUTC.UTC().Add(time.Duration(OffsetHours(c)) * time.Hour)
	year, month, day := local.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Tomorrow returns the day after Today at the coordinates.
func Tomorrow(c models.Coordinates, nowUTC time.Time) time.Time {
	return Today(c, nowUTC).AddDate(0, 0, 1)
}

// IsTomorrow reports whether date falls on the location's next local
// calendar day.
func IsTomorrow(c models.Coordinates, date, nowUTC time.Time) bool {
	return SameDate(date, Tomorrow(c, nowUTC))
}

// SameDate reports whether two instants share a calendar date when read in
// UTC.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
