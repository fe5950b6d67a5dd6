package progress

import "time"

// DateLayout is the calendar-day key used by DailyActivity and StreakState.
const DateLayout = "2006-01-02"

// DateOf formats t as a calendar day in the server's local zone.
func DateOf(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// ParseDate parses a DateLayout string as local midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// Midnight truncates t to local midnight.
func Midnight(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
