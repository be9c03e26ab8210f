// Package domain holds the eligibility window rules.
package domain

import "time"

// ValidityMonths is the length of an approved eligibility window.
const ValidityMonths = 3

// AddMonthsClamped advances t by the given number of calendar months,
// clamping to the last day of the target month when the source day does
// not exist there. Jan 31 plus three months lands on Apr 30, never
// May 1. Time of day and location are preserved.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	targetMonth := time.Month(int(month) + months)

	candidate := time.Date(year, targetMonth, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := lastDayOfMonth(candidate); day > last {
		day = last
	}
	return time.Date(year, targetMonth, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// WindowEnd computes the end of an eligibility window starting at start.
func WindowEnd(start time.Time) time.Time {
	return AddMonthsClamped(start, ValidityMonths)
}

func lastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	return firstOfNext.AddDate(0, 0, -1).Day()
}
