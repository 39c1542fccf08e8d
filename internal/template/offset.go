package template

import "time"

// ToOffsetDays returns the number of days from start to target, rounded up
// to whole days and clamped at zero. Days are counted on the calendar, so a
// DST transition between the two instants does not shift the result.
func ToOffsetDays(start, target time.Time) int {
	target = target.In(start.Location())
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	targetDay := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	days := int(targetDay.Sub(startDay).Hours() / 24)

	// Any time-of-day remainder past start counts as another day.
	if target.After(start.AddDate(0, 0, days)) {
		days++
	}
	if days < 0 {
		return 0
	}
	return days
}

// FromOffsetDays returns start advanced by the given number of calendar days.
func FromOffsetDays(start time.Time, days int) time.Time {
	return start.AddDate(0, 0, days)
}
