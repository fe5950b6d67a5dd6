package progress

import "sort"

// Standing is the set of aggregates achievement criteria are measured against.
type Standing struct {
	TotalCompleted    int
	CurrentStreak     int
	LongestStreak     int
	RoadmapsCompleted int
	TotalStudyTime    int
}

var criteriaGetters = map[CriteriaType]func(Standing) int{
	CriteriaTasksCompleted:    func(s Standing) int { return s.TotalCompleted },
	CriteriaStreakDays:        func(s Standing) int { return s.CurrentStreak },
	CriteriaRoadmapsCompleted: func(s Standing) int { return s.RoadmapsCompleted },
	CriteriaTimeSpent:         func(s Standing) int { return s.TotalStudyTime },
	CriteriaConsecutiveDays:   func(s Standing) int { return s.LongestStreak },
}

func (c CriteriaType) Valid() bool {
	_, ok := criteriaGetters[c]
	return ok
}

// CriteriaValue reports the user's current measure for c.
func CriteriaValue(c CriteriaType, s Standing) (int, bool) {
	get, ok := criteriaGetters[c]
	if !ok {
		return 0, false
	}
	return get(s), true
}

// Qualifies reports whether s meets a's threshold. Inactive and unknown criteria never qualify.
func (a *Achievement) Qualifies(s Standing) bool {
	if a == nil || !a.IsActive {
		return false
	}
	v, ok := CriteriaValue(a.CriteriaType, s)
	return ok && v >= a.CriteriaValue
}

// NewlyQualified returns catalog entries s meets that are not in earned, in catalog order.
func NewlyQualified(catalog []*Achievement, earned map[string]bool, s Standing) []*Achievement {
	out := make([]*Achievement, 0)
	for _, a := range catalog {
		if a == nil || earned[a.ID] {
			continue
		}
		if a.Qualifies(s) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}
