package utils

import (
	"fmt"
	"strings"
	"time"
)

// naiveLayouts are accepted by ParseUTC for values without an offset; they are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// LoadLocation resolves an IANA zone id. An empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", name, err)
	}
	return loc, nil
}

// LocalToUTC returns the UTC instant at which the wall clock in loc reads the given date and time.
// An ambiguous wall time (DST fall-back) resolves to its earlier occurrence. A wall time inside a
// DST gap is read with the offset in force before the transition, so it lands after the gap.
func LocalToUTC(loc *time.Location, year int, month time.Month, day, hour, minute int) time.Time {
	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	if t.Hour() == hour && t.Minute() == minute {
		return t.UTC()
	}
	naive := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	_, before := naive.Add(-24 * time.Hour).In(loc).Zone()
	return naive.Add(-time.Duration(before) * time.Second).UTC()
}

// UTCToLocal converts an instant to the wall clock of loc.
func UTCToLocal(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

// ParseUTC parses an ISO-8601 instant and returns it in UTC.
func ParseUTC(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO-8601", value)
}

// FormatUTC renders an instant as an RFC 3339 UTC string.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimeOfDay parses a 24-hour "HH:MM" wall-clock time.
func ParseTimeOfDay(value string) (hour, minute int, err error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: expected HH:MM", value)
	}
	return t.Hour(), t.Minute(), nil
}

// FormatTimeOfDay renders hour and minute as "HH:MM".
func FormatTimeOfDay(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
