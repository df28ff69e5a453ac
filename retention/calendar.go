package retention

import "time"

const day = 24 * time.Hour

// AgeDays returns the whole days elapsed between createdAt and now.
// Artifacts dated in the future count as age 0.
func AgeDays(now, createdAt time.Time) int {
	d := now.Sub(createdAt)
	if d < 0 {
		return 0
	}
	return int(d / day)
}

// IsWeeklyAligned reports whether t falls on the anchor weekday in loc.
func IsWeeklyAligned(t time.Time, anchor time.Weekday, loc *time.Location) bool {
	return t.In(orUTC(loc)).Weekday() == anchor
}

// IsMonthlyAligned reports whether t falls on the first day of its month in loc.
func IsMonthlyAligned(t time.Time, loc *time.Location) bool {
	return t.In(orUTC(loc)).Day() == 1
}

// calendarDay truncates t to its civil date in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(orUTC(loc)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
