// Package sla implements the business-hours-aware SLA engine: calendar
// membership, elapsed-duration math, deadline projection, ticket evaluation
// and population rollups. Everything in this package is pure and safe for
// concurrent use.
package sla

import (
	"fmt"
	"time"
)

// Calendar is a recurring weekly working-hours window in a fixed timezone.
// The end-of-day boundary is exclusive: 18:00:00 itself is outside a
// 08:00-18:00 window.
type Calendar struct {
	dayStart time.Duration
	dayEnd   time.Duration
	weekdays [7]bool
	loc      *time.Location
}

// NewCalendar builds a calendar from "HH:MM" day bounds, the set of active
// weekdays and an IANA timezone name.
func NewCalendar(dayStart, dayEnd string, weekdays []time.Weekday, timezone string) (*Calendar, error) {
	start, err := parseClock(dayStart)
	if err != nil {
		return nil, fmt.Errorf("invalid day start: %w", err)
	}
	end, err := parseClock(dayEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid day end: %w", err)
	}
	if start >= end {
		return nil, fmt.Errorf("day start %s must precede day end %s", dayStart, dayEnd)
	}
	if len(weekdays) == 0 {
		return nil, fmt.Errorf("calendar requires at least one active weekday")
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	cal := &Calendar{dayStart: start, dayEnd: end, loc: loc}
	for _, wd := range weekdays {
		cal.weekdays[int(wd)] = true
	}
	return cal, nil
}

// MustCalendar is NewCalendar that panics on invalid input. Intended for
// fixed fallback calendars and tests.
func MustCalendar(dayStart, dayEnd string, weekdays []time.Weekday, timezone string) *Calendar {
	cal, err := NewCalendar(dayStart, dayEnd, weekdays, timezone)
	if err != nil {
		panic(err)
	}
	return cal
}

// IsBusinessInstant reports whether t falls inside the working window after
// normalizing t into the calendar's timezone.
func (c *Calendar) IsBusinessInstant(t time.Time) bool {
	local := t.In(c.loc)
	if !c.weekdays[int(local.Weekday())] {
		return false
	}
	clock := clockOf(local)
	return clock >= c.dayStart && clock < c.dayEnd
}

// Location returns the calendar's timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// ActiveWeekday reports whether the calendar works on the given weekday.
func (c *Calendar) ActiveWeekday(wd time.Weekday) bool {
	return c.weekdays[int(wd)]
}

// windowFor returns the absolute business window for the calendar day
// containing the given local instant. ok is false on inactive weekdays.
func (c *Calendar) windowFor(local time.Time) (start, end time.Time, ok bool) {
	if !c.weekdays[int(local.Weekday())] {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := local.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, c.loc).Add(c.dayStart)
	end = time.Date(y, m, d, 0, 0, 0, 0, c.loc).Add(c.dayEnd)
	return start, end, true
}

func clockOf(local time.Time) time.Duration {
	return time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())
}

func parseClock(value string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(value, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", value)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
