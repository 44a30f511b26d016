package domain

import (
	"time"
)

// DayLayout formats a calendar day.
const DayLayout = "2006-01-02"

// LoadLocation resolves an IANA zone name, falling back when name is empty
// or unknown.
func LoadLocation(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}

// DayBounds returns the [start, end) instants of t's calendar day in loc.
// The end is the next local midnight, so DST days are 23 or 25 hours long.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// LocalDay formats t as a calendar day in loc.
func LocalDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}
