package progress

// ApplyCompletion folds a completion transition into the accumulators. Counters floor at 0.
func (s *UserStats) ApplyCompletion(d Difficulty, timeSpent int, completed bool) {
	sign := 1
	if !completed {
		sign = -1
	}
	s.TotalCompleted = floor0(s.TotalCompleted + sign)
	s.TotalStudyTime = floor0(s.TotalStudyTime + sign*timeSpent)
	s.ExperiencePoints = floor0(s.ExperiencePoints + sign*XPPerCompletion)
	switch d {
	case DifficultyEasy:
		s.ProblemsEasy = floor0(s.ProblemsEasy + sign)
	case DifficultyHard:
		s.ProblemsHard = floor0(s.ProblemsHard + sign)
	default:
		s.ProblemsMedium = floor0(s.ProblemsMedium + sign)
	}
	s.ProblemsTotal = s.ProblemsEasy + s.ProblemsMedium + s.ProblemsHard
	s.Level = LevelForXP(s.ExperiencePoints)
}

// Retain moves the completed events of a deleted roadmap into retained history. The live
// counters are unchanged. It returns how many events were retained.
func (s *UserStats) Retain(events []*CompletionEvent) int {
	n := 0
	for _, ev := range events {
		if ev == nil || !ev.Completed {
			continue
		}
		n++
		s.RetainedCompleted++
		s.RetainedStudyTime += ev.TimeSpentMinutes
		switch ev.Difficulty {
		case DifficultyEasy:
			s.RetainedEasy++
		case DifficultyHard:
			s.RetainedHard++
		default:
			s.RetainedMedium++
		}
	}
	return n
}

// RebuildCounters recomputes the ledger-derived counters as retained history plus the live
// completed events. XP is an independent accumulator and is left alone.
func (s *UserStats) RebuildCounters(events []*CompletionEvent) {
	s.TotalCompleted = s.RetainedCompleted
	s.TotalStudyTime = s.RetainedStudyTime
	s.ProblemsEasy, s.ProblemsMedium, s.ProblemsHard = s.RetainedEasy, s.RetainedMedium, s.RetainedHard
	for _, ev := range events {
		if ev == nil || !ev.Completed {
			continue
		}
		s.TotalCompleted++
		s.TotalStudyTime += ev.TimeSpentMinutes
		switch ev.Difficulty {
		case DifficultyEasy:
			s.ProblemsEasy++
		case DifficultyHard:
			s.ProblemsHard++
		default:
			s.ProblemsMedium++
		}
	}
	s.ProblemsTotal = s.ProblemsEasy + s.ProblemsMedium + s.ProblemsHard
	s.Level = LevelForXP(s.ExperiencePoints)
}

// AddXP applies an achievement reward and recomputes the level.
func (s *UserStats) AddXP(xp int) {
	s.ExperiencePoints = floor0(s.ExperiencePoints + xp)
	s.Level = LevelForXP(s.ExperiencePoints)
}

func floor0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
