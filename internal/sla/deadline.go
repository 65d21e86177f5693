package sla

import "time"

// nextInstantScanDays bounds the forward scan in NextBusinessInstant. Any
// calendar with an active weekday resolves within seven days; the bound only
// matters for degenerate configurations.
const nextInstantScanDays = 14

// projectionDayCap is a hard stop for deadline projection over calendars
// whose windows never yield usable time.
const projectionDayCap = 1000

// NextBusinessInstant returns t when t already falls inside a business
// window, otherwise the start of the next active window. After scanning
// nextInstantScanDays days without a hit it falls back to the following
// Monday at day start.
func NextBusinessInstant(t time.Time, cal *Calendar) time.Time {
	local := t.In(cal.loc)
	if cal.IsBusinessInstant(local) {
		return local
	}

	day := startOfDay(local)
	for i := 0; i < nextInstantScanDays; i++ {
		if winStart, _, ok := cal.windowFor(day); ok && local.Before(winStart) {
			return winStart
		}
		day = day.AddDate(0, 0, 1)
	}

	return nextMondayStart(local, cal)
}

// ProjectDeadline returns the absolute instant by which requiredHours of
// business time, counted from start, will have elapsed. start is snapped
// forward to the next business instant first.
func ProjectDeadline(start time.Time, requiredHours float64, cal *Calendar) time.Time {
	remaining := time.Duration(requiredHours * float64(time.Hour))
	cursor := NextBusinessInstant(start, cal)
	if remaining <= 0 {
		return cursor
	}

	for i := 0; i < projectionDayCap; i++ {
		_, winEnd, ok := cal.windowFor(cursor)
		if !ok {
			cursor = NextBusinessInstant(cursor.AddDate(0, 0, 1), cal)
			continue
		}
		available := winEnd.Sub(cursor)
		if available >= remaining {
			return cursor.Add(remaining)
		}
		remaining -= available
		cursor = NextBusinessInstant(winEnd, cal)
	}
	return cursor
}

func nextMondayStart(local time.Time, cal *Calendar) time.Time {
	day := startOfDay(local)
	for {
		day = day.AddDate(0, 0, 1)
		if day.Weekday() == time.Monday {
			y, m, d := day.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, cal.loc).Add(cal.dayStart)
		}
	}
}
