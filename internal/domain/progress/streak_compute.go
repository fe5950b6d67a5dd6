package progress

import "time"

// StreakRun is the outcome of walking the active-day set.
type StreakRun struct {
	Current        int
	StartDate      *string
	LastActiveDate *string
}

// ComputeStreak walks back one calendar day at a time from the anchor. The anchor is today
// when today is active, otherwise yesterday, since a day with no activity yet has not been
// missed. Dates after today are ignored.
func ComputeStreak(activeDates []string, now time.Time) StreakRun {
	today := Midnight(now)
	todayKey := today.Format(DateLayout)

	set := make(map[string]struct{}, len(activeDates))
	last := ""
	for _, d := range activeDates {
		if d == "" || d > todayKey {
			continue
		}
		set[d] = struct{}{}
		if d > last {
			last = d
		}
	}
	var run StreakRun
	if last == "" {
		return run
	}
	run.LastActiveDate = strPtr(last)

	anchor := today
	if _, ok := set[todayKey]; !ok {
		anchor = today.AddDate(0, 0, -1)
		if _, ok := set[anchor.Format(DateLayout)]; !ok {
			return run
		}
	}

	cursor := anchor
	start := ""
	for {
		key := cursor.Format(DateLayout)
		if _, ok := set[key]; !ok {
			break
		}
		run.Current++
		start = key
		cursor = cursor.AddDate(0, 0, -1)
	}
	run.StartDate = strPtr(start)
	return run
}

// ApplyRun folds a fresh run into the stored state. Longest never decreases.
func (s *StreakState) ApplyRun(run StreakRun, now time.Time) {
	s.CurrentStreak = run.Current
	if run.Current > s.LongestStreak {
		s.LongestStreak = run.Current
	}
	s.StreakStartDate = run.StartDate
	if run.LastActiveDate != nil {
		s.LastActiveDate = run.LastActiveDate
	}
	s.UpdatedAt = now
}

func strPtr(s string) *string { return &s }
