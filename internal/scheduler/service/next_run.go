package service

import (
	"fmt"
	"math"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/pkg/utils"
)

// MaxIntervalHours is the largest interval whose length still fits in a time.Duration.
const MaxIntervalHours = math.MaxInt64 / int64(time.Hour)

// NextRunCalculator computes when a schedule fires next. It is pure: the same schedule and
// instant always give the same answer.
type NextRunCalculator struct {
	loc *time.Location
}

// NewNextRunCalculator creates a calculator that reads weekly times of day in loc.
func NewNextRunCalculator(loc *time.Location) *NextRunCalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &NextRunCalculator{loc: loc}
}

// Location returns the zone weekly schedules are evaluated in.
func (c *NextRunCalculator) Location() *time.Location {
	return c.loc
}

// Next returns the next UTC instant at which s should fire, evaluated at now.
// ok is false when the schedule has no further occurrences.
//
// A one-off returns its run time unchanged until it has fired, even if that time is already
// past. Interval and weekly results are always strictly after now.
func (c *NextRunCalculator) Next(s *entity.Schedule, now time.Time) (next time.Time, ok bool, err error) {
	now = now.UTC()
	switch s.ScheduleType {
	case entity.ScheduleTypeOneOff:
		if s.Exhausted || s.RunAt == nil {
			return time.Time{}, false, nil
		}
		return s.RunAt.UTC(), true, nil
	case entity.ScheduleTypeInterval:
		return c.nextInterval(s, now)
	case entity.ScheduleTypeWeekly:
		return c.nextWeekly(s, now)
	default:
		return time.Time{}, false, fmt.Errorf("unsupported schedule type %q", s.ScheduleType)
	}
}

// Upcoming returns up to n future occurrences of s, starting with Next(s, now).
func (c *NextRunCalculator) Upcoming(s *entity.Schedule, now time.Time, n int) ([]time.Time, error) {
	sim := *s
	runs := make([]time.Time, 0, n)
	at := now
	for len(runs) < n {
		next, ok, err := c.Next(&sim, at)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		runs = append(runs, next)
		if sim.ScheduleType == entity.ScheduleTypeOneOff {
			break
		}
		fired := next
		sim.LastFiredAt = &fired
		at = next
	}
	return runs, nil
}

// nextInterval anchors on the later of the last occurrence and the creation time. When the
// anchor plus one interval is not in the future, missed occurrences are skipped and the next
// whole multiple of the interval after now is returned.
func (c *NextRunCalculator) nextInterval(s *entity.Schedule, now time.Time) (time.Time, bool, error) {
	if s.IntervalHours < 1 {
		return time.Time{}, false, fmt.Errorf("interval_hours must be at least 1, got %d", s.IntervalHours)
	}
	if int64(s.IntervalHours) > MaxIntervalHours {
		return time.Time{}, false, fmt.Errorf("interval_hours must be at most %d, got %d", MaxIntervalHours, s.IntervalHours)
	}
	step := time.Duration(s.IntervalHours) * time.Hour

	anchor := s.CreatedAt.UTC()
	if s.LastFiredAt != nil && s.LastFiredAt.After(anchor) {
		anchor = s.LastFiredAt.UTC()
	}

	next := anchor.Add(step)
	if next.After(now) {
		return next, true, nil
	}
	missed := now.Sub(anchor) / step
	next = anchor.Add((missed + 1) * step)
	if !next.After(now) {
		return time.Time{}, false, fmt.Errorf("interval of %d hours from %s does not reach past %s",
			s.IntervalHours, utils.FormatUTC(anchor), utils.FormatUTC(now))
	}
	return next, true, nil
}

// nextWeekly scans today and the next seven local dates for the earliest selected weekday
// whose local time of day is strictly after now. An ambiguous local time resolves to its
// earlier instant only, so when now falls between the two readings of a repeated hour the
// later reading is skipped and the following week is returned.
func (c *NextRunCalculator) nextWeekly(s *entity.Schedule, now time.Time) (time.Time, bool, error) {
	days := s.Weekdays()
	if len(days) == 0 {
		return time.Time{}, false, fmt.Errorf("weekly schedule %s has no weekdays", s.ID)
	}
	hour, minute, err := utils.ParseTimeOfDay(s.TimeOfDayLocal)
	if err != nil {
		return time.Time{}, false, err
	}

	selected := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		selected[d.TimeWeekday()] = true
	}

	local := utils.UTCToLocal(now, c.loc)
	for offset := 0; offset <= 7; offset++ {
		// Noon is clear of DST transitions.
		date := time.Date(local.Year(), local.Month(), local.Day()+offset, 12, 0, 0, 0, c.loc)
		if !selected[date.Weekday()] {
			continue
		}
		candidate := utils.LocalToUTC(c.loc, date.Year(), date.Month(), date.Day(), hour, minute)
		if candidate.After(now) {
			return candidate, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("no weekly occurrence found for schedule %s", s.ID)
}
