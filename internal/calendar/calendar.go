// Package calendar holds the pure date arithmetic every other component
// leans on. All comparisons happen on normalized dates; callers must
// never compare raw timestamps against stay dates.
package calendar

import "time"

// Normalize strips time-of-day and timezone, returning midnight UTC of
// the same calendar date.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InRange reports whether d falls within [start, end], inclusive on
// both ends. All three arguments are normalized before any comparison.
func InRange(d, start, end time.Time) bool {
	d = Normalize(d)
	start = Normalize(start)
	end = Normalize(end)
	return !d.Before(start) && !d.After(end)
}

// Nights returns the stay length between check-in and check-out.
// Zero or negative means the range is empty or inverted.
func Nights(checkIn, checkOut time.Time) int {
	checkIn = Normalize(checkIn)
	checkOut = Normalize(checkOut)
	return int(checkOut.Sub(checkIn) / (24 * time.Hour))
}

// StayDates lists the calendar dates a stay occupies: check-in up to
// but excluding check-out, so an N-night stay touches N dates.
func StayDates(checkIn, checkOut time.Time) []time.Time {
	checkIn = Normalize(checkIn)
	checkOut = Normalize(checkOut)

	var dates []time.Time
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
