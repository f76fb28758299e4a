package service

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DateOnly drops the time of day, keeping the calendar date as seen in t's
// location.  The result is in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights counts whole calendar days from checkIn to checkOut.  Times of day
// are ignored, so 23:00 to 01:00 the next day is one night.
func Nights(checkIn, checkOut time.Time) int {
	const day = 24 * 60 * 60
	// Unix seconds of two midnights differ by whole days; a Duration would
	// saturate past ~292 years.
	return int((DateOnly(checkOut).Unix() - DateOnly(checkIn).Unix()) / day)
}

// TotalPrice is nights × perNight × (1 − pct/100), rounded to cents.
func TotalPrice(nights int, perNight, pct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return decimal.NewFromInt(int64(nights)).Mul(perNight).Mul(factor).Round(2)
}
