package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBusinessInstant(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{
			"business instant is identity",
			time.Date(2024, 3, 4, 10, 0, 0, 0, loc),
			time.Date(2024, 3, 4, 10, 0, 0, 0, loc),
		},
		{
			"before opening snaps to same day start",
			time.Date(2024, 3, 4, 6, 30, 0, 0, loc),
			time.Date(2024, 3, 4, 8, 0, 0, 0, loc),
		},
		{
			"after closing snaps to next day start",
			time.Date(2024, 3, 4, 19, 0, 0, 0, loc),
			time.Date(2024, 3, 5, 8, 0, 0, 0, loc),
		},
		{
			"friday evening snaps to monday",
			time.Date(2024, 3, 8, 18, 0, 0, 0, loc),
			time.Date(2024, 3, 11, 8, 0, 0, 0, loc),
		},
		{
			"saturday snaps to monday",
			time.Date(2024, 3, 9, 12, 0, 0, 0, loc),
			time.Date(2024, 3, 11, 8, 0, 0, 0, loc),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(NextBusinessInstant(tc.at, cal)),
				"got %s", NextBusinessInstant(tc.at, cal))
		})
	}
}

func TestNextBusinessInstantSingleWeekday(t *testing.T) {
	cal, err := NewCalendar("09:00", "12:00", []time.Weekday{time.Wednesday}, "America/Sao_Paulo")
	require.NoError(t, err)
	loc := saoPaulo(t)

	// Thursday morning: the next window is the following Wednesday.
	at := time.Date(2024, 3, 7, 9, 0, 0, 0, loc)
	want := time.Date(2024, 3, 13, 9, 0, 0, 0, loc)
	assert.True(t, want.Equal(NextBusinessInstant(at, cal)))
}

func TestProjectDeadline(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)

	tests := []struct {
		name  string
		start time.Time
		hours float64
		want  time.Time
	}{
		{
			"fits in current day",
			time.Date(2024, 3, 4, 9, 0, 0, 0, loc),
			4,
			time.Date(2024, 3, 4, 13, 0, 0, 0, loc),
		},
		{
			"spills into next day",
			time.Date(2024, 3, 4, 16, 0, 0, 0, loc),
			4,
			time.Date(2024, 3, 5, 10, 0, 0, 0, loc),
		},
		{
			"spans a weekend",
			time.Date(2024, 3, 8, 16, 0, 0, 0, loc),
			6,
			time.Date(2024, 3, 11, 12, 0, 0, 0, loc),
		},
		{
			"non-business start snaps forward first",
			time.Date(2024, 3, 9, 10, 0, 0, 0, loc),
			2,
			time.Date(2024, 3, 11, 10, 0, 0, 0, loc),
		},
		{
			"zero hours returns snapped start",
			time.Date(2024, 3, 4, 6, 0, 0, 0, loc),
			0,
			time.Date(2024, 3, 4, 8, 0, 0, 0, loc),
		},
		{
			"24h budget over 10h days",
			time.Date(2024, 3, 4, 8, 0, 0, 0, loc),
			24,
			time.Date(2024, 3, 6, 12, 0, 0, 0, loc),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ProjectDeadline(tc.start, tc.hours, cal)
			assert.True(t, tc.want.Equal(got), "got %s", got)
		})
	}
}

// Projecting a deadline and measuring back to it must recover the budget.
func TestProjectDeadlineRoundTrip(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)

	starts := []time.Time{
		time.Date(2024, 3, 4, 8, 0, 0, 0, loc),
		time.Date(2024, 3, 4, 16, 45, 0, 0, loc),
		time.Date(2024, 3, 6, 11, 15, 0, 0, loc),
		time.Date(2024, 3, 8, 17, 30, 0, 0, loc),
	}
	budgets := []float64{0.5, 1, 2, 8, 10, 24, 73.25}

	for _, start := range starts {
		for _, hours := range budgets {
			deadline := ProjectDeadline(start, hours, cal)
			measured := BusinessHoursBetween(start, deadline, cal)
			assert.InDelta(t, hours, measured, 1e-6,
				"start %s budget %.2fh deadline %s", start, hours, deadline)
		}
	}
}
