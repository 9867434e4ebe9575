package shared

import "time"

// Clock returns the current time. Services take a Clock so day windows are reproducible.
type Clock func() time.Time

// SystemClock returns time.Now in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

// FixedClock returns a Clock that always reports t
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayWindow returns the half-open window of `days` days that ends `offsetDays` days before the
// end of today. With offsetDays = 0 the window includes today.
func DayWindow(now time.Time, days, offsetDays int) (start, end time.Time) {
	end = StartOfDay(now).AddDate(0, 0, 1-offsetDays)
	start = end.AddDate(0, 0, -days)
	return start, end
}
