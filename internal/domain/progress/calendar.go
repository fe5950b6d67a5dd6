package progress

import "time"

// FillYear returns one entry per calendar day of year, ascending, taking counts from rows
// (keyed by date) and zero-filling the rest.
func FillYear(year int, rows map[string]*DailyActivity) []*DailyActivity {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.Local)
	out := make([]*DailyActivity, 0, 366)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		n := 0
		if r, ok := rows[key]; ok && r != nil {
			n = r.TasksCompleted
		}
		out = append(out, &DailyActivity{
			Date:           key,
			TasksCompleted: n,
			ActivityLevel:  ActivityLevel(n),
		})
	}
	return out
}

// YearBounds returns the first and last date keys of year.
func YearBounds(year int) (string, string) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local).Format(DateLayout),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.Local).Format(DateLayout)
}

// WeekWindow is the rolling seven-day window [today-6, today].
func WeekWindow(today time.Time) (string, string) {
	t := Midnight(today)
	return t.AddDate(0, 0, -6).Format(DateLayout), t.Format(DateLayout)
}
