package sla

import "time"

// BusinessHoursBetween returns the working time elapsed between start and
// end, in hours. It walks day by day through the calendar, intersecting each
// day's window with [start, end]; inactive weekdays contribute nothing.
// Returns 0 when start >= end.
func BusinessHoursBetween(start, end time.Time, cal *Calendar) float64 {
	return BusinessDurationBetween(start, end, cal).Hours()
}

// BusinessDurationBetween is BusinessHoursBetween at full time.Duration
// precision. Rounding is left to presentation.
func BusinessDurationBetween(start, end time.Time, cal *Calendar) time.Duration {
	if cal == nil || !end.After(start) {
		return 0
	}

	local := start.In(cal.loc)
	endLocal := end.In(cal.loc)

	var total time.Duration
	for day := startOfDay(local); !day.After(endLocal); day = day.AddDate(0, 0, 1) {
		winStart, winEnd, ok := cal.windowFor(day)
		if !ok {
			continue
		}
		from := winStart
		if local.After(from) {
			from = local
		}
		to := winEnd
		if endLocal.Before(to) {
			to = endLocal
		}
		if to.After(from) {
			total += to.Sub(from)
		}
	}
	return total
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
