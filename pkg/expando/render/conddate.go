package render

import (
	"time"

	"github.com/sambeau/expando/pkg/expando/ast"
)

// Now is the clock used by relative-date predicates. Tests swap it
// for a fixed time.
var Now = time.Now

// evalCondDate reports whether timestamp (Unix seconds) is newer than
// the cutoff described by the predicate. A count-zero predicate asks
// "within the current period", so the period's very first second
// counts; an explicit count is strictly newer than the cutoff.
func evalCondDate(n *ast.CondDateNode, timestamp int64) bool {
	if n.Count == 0 {
		return timestamp >= cutoffThis(n.Period).Unix()
	}
	return timestamp > cutoffNumber(n.Period, n.Count).Unix()
}

// cutoffThis returns the start of the current period in local
// calendar time: this year is January 1st 00:00:00, this month the
// 1st at midnight, and so on. Weeks reset only the day-of-month,
// keeping the time of day; that is a documented approximation, not
// the start of an ISO week.
func cutoffThis(period ast.Period) time.Time {
	now := Now().Local()
	y, mo, d := now.Date()
	h, mi, _ := now.Clock()
	loc := now.Location()

	switch period {
	case ast.PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case ast.PeriodMonth:
		return time.Date(y, mo, 1, 0, 0, 0, 0, loc)
	case ast.PeriodWeek:
		return time.Date(y, mo, 1, h, mi, now.Second(), 0, loc)
	case ast.PeriodDay:
		return time.Date(y, mo, d, 0, 0, 0, 0, loc)
	case ast.PeriodHour:
		return time.Date(y, mo, d, h, 0, 0, 0, loc)
	default: // ast.PeriodMinute
		return time.Date(y, mo, d, h, mi, 0, 0, loc)
	}
}

// cutoffNumber returns the local time count periods before now.
// Month and year steps are calendar-aware: the day-of-month is
// clamped to the target month's length, so one month before March
// 31st is the last day of February. Week, day, hour and minute steps
// renormalize through the calendar, respecting DST and month
// boundaries.
func cutoffNumber(period ast.Period, count int) time.Time {
	now := Now().Local()
	y, mo, d := now.Date()
	h, mi, s := now.Clock()
	loc := now.Location()

	switch period {
	case ast.PeriodYear:
		y -= count
		d = clampDay(y, mo, d)
	case ast.PeriodMonth:
		m := int(mo) - 1 - count
		y += m / 12
		m %= 12
		if m < 0 {
			m += 12
			y--
		}
		mo = time.Month(m + 1)
		d = clampDay(y, mo, d)
	case ast.PeriodWeek:
		d -= 7 * count
	case ast.PeriodDay:
		d -= count
	case ast.PeriodHour:
		h -= count
	case ast.PeriodMinute:
		mi -= count
	}

	return time.Date(y, mo, d, h, mi, s, 0, loc)
}

// clampDay caps a day-of-month to the length of the given month.
func clampDay(year int, month time.Month, day int) int {
	// Day zero of the next month is the last day of this one.
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
