package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLevel(t *testing.T) {
	cases := map[int]int{0: 0, 1: 0, 2: 1, 3: 1, 7: 3, 8: 4, 9: 4, 100: 4, -3: 0}
	for n, want := range cases {
		assert.Equalf(t, want, ActivityLevel(n), "ActivityLevel(%d)", n)
	}
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(299))
	assert.Equal(t, 2, LevelForXP(300))
	assert.Equal(t, 4, LevelForXP(950))
	assert.Equal(t, 1, LevelForXP(-20))
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("hard")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, d)

	d, err = ParseDifficulty("")
	require.NoError(t, err)
	assert.Equal(t, DifficultyMedium, d)

	_, err = ParseDifficulty("extreme")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFillYear(t *testing.T) {
	rows := map[string]*DailyActivity{
		"2024-02-29": {Date: "2024-02-29", TasksCompleted: 5},
		"2024-12-31": {Date: "2024-12-31", TasksCompleted: 1},
	}
	days := FillYear(2024, rows)
	require.Len(t, days, 366)
	assert.Equal(t, "2024-01-01", days[0].Date)
	assert.Equal(t, "2024-12-31", days[365].Date)
	assert.Equal(t, 5, days[59].TasksCompleted)
	assert.Equal(t, 2, days[59].ActivityLevel)
	assert.Equal(t, 0, days[365].ActivityLevel)

	assert.Len(t, FillYear(2023, nil), 365)
	for i := 1; i < len(days); i++ {
		require.Less(t, days[i-1].Date, days[i].Date)
	}
}

func TestWeekWindow(t *testing.T) {
	from, to := WeekWindow(time.Date(2024, time.March, 3, 18, 30, 0, 0, time.Local))
	assert.Equal(t, "2024-02-26", from)
	assert.Equal(t, "2024-03-03", to)
}

func TestComputeStreak(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.Local)

	t.Run("ends today", func(t *testing.T) {
		run := ComputeStreak([]string{"2024-03-10", "2024-03-09", "2024-03-08", "2024-03-06"}, now)
		assert.Equal(t, 3, run.Current)
		require.NotNil(t, run.StartDate)
		assert.Equal(t, "2024-03-08", *run.StartDate)
		assert.Equal(t, "2024-03-10", *run.LastActiveDate)
	})

	t.Run("today not yet active", func(t *testing.T) {
		run := ComputeStreak([]string{"2024-03-09", "2024-03-08"}, now)
		assert.Equal(t, 2, run.Current)
		assert.Equal(t, "2024-03-08", *run.StartDate)
	})

	t.Run("one full day gap resets", func(t *testing.T) {
		run := ComputeStreak([]string{"2024-03-08", "2024-03-07"}, now)
		assert.Equal(t, 0, run.Current)
		assert.Nil(t, run.StartDate)
		assert.Equal(t, "2024-03-08", *run.LastActiveDate)
	})

	t.Run("no activity", func(t *testing.T) {
		run := ComputeStreak(nil, now)
		assert.Equal(t, 0, run.Current)
		assert.Nil(t, run.LastActiveDate)
	})

	t.Run("crosses month boundary", func(t *testing.T) {
		now := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.Local)
		run := ComputeStreak([]string{"2024-03-02", "2024-03-01", "2024-02-29", "2024-02-28"}, now)
		assert.Equal(t, 4, run.Current)
	})

	t.Run("future dates ignored", func(t *testing.T) {
		run := ComputeStreak([]string{"2024-03-11", "2024-03-10"}, now)
		assert.Equal(t, 1, run.Current)
		assert.Equal(t, "2024-03-10", *run.LastActiveDate)
	})
}

func TestStreakStateApplyRunKeepsLongest(t *testing.T) {
	now := time.Now()
	s := &StreakState{LongestStreak: 5}
	s.ApplyRun(StreakRun{Current: 3}, now)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 5, s.LongestStreak)

	s.ApplyRun(StreakRun{}, now)
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, 5, s.LongestStreak)

	s.ApplyRun(StreakRun{Current: 6}, now)
	assert.Equal(t, 6, s.LongestStreak)
	assert.GreaterOrEqual(t, s.LongestStreak, s.CurrentStreak)
}

func TestNewlyQualified(t *testing.T) {
	catalog := []*Achievement{
		{ID: "task_master", CriteriaType: CriteriaTasksCompleted, CriteriaValue: 10, SortOrder: 2, IsActive: true},
		{ID: "first_steps", CriteriaType: CriteriaTasksCompleted, CriteriaValue: 1, SortOrder: 1, IsActive: true},
		{ID: "week_warrior", CriteriaType: CriteriaStreakDays, CriteriaValue: 7, SortOrder: 3, IsActive: true},
		{ID: "retired", CriteriaType: CriteriaTasksCompleted, CriteriaValue: 1, SortOrder: 4, IsActive: false},
		{ID: "bogus", CriteriaType: CriteriaType("bogus"), CriteriaValue: 0, SortOrder: 5, IsActive: true},
	}
	got := NewlyQualified(catalog, map[string]bool{}, Standing{TotalCompleted: 10, CurrentStreak: 6})
	require.Len(t, got, 2)
	assert.Equal(t, "first_steps", got[0].ID)
	assert.Equal(t, "task_master", got[1].ID)

	got = NewlyQualified(catalog, map[string]bool{"first_steps": true, "task_master": true}, Standing{TotalCompleted: 10})
	assert.Empty(t, got)
}

func TestCriteriaValue(t *testing.T) {
	s := Standing{TotalCompleted: 1, CurrentStreak: 2, LongestStreak: 9, RoadmapsCompleted: 3, TotalStudyTime: 120}
	for ct, want := range map[CriteriaType]int{
		CriteriaTasksCompleted:    1,
		CriteriaStreakDays:        2,
		CriteriaConsecutiveDays:   9,
		CriteriaRoadmapsCompleted: 3,
		CriteriaTimeSpent:         120,
	} {
		got, ok := CriteriaValue(ct, s)
		require.True(t, ok, ct)
		assert.Equal(t, want, got, ct)
	}
	_, ok := CriteriaValue("nope", s)
	assert.False(t, ok)
}

func TestUserStatsApplyCompletion(t *testing.T) {
	s := &UserStats{Level: 1}
	s.ApplyCompletion(DifficultyHard, 30, true)
	assert.Equal(t, 1, s.TotalCompleted)
	assert.Equal(t, 10, s.ExperiencePoints)
	assert.Equal(t, 30, s.TotalStudyTime)
	assert.Equal(t, 1, s.ProblemsHard)
	assert.Equal(t, 1, s.ProblemsTotal)

	s.ApplyCompletion(DifficultyHard, 30, false)
	assert.Equal(t, UserStats{Level: 1}, *s)

	// XP floors at zero.
	s.ApplyCompletion(DifficultyEasy, 5, false)
	assert.Equal(t, 0, s.ExperiencePoints)
	assert.Equal(t, 0, s.ProblemsEasy)
	assert.Equal(t, 0, s.TotalStudyTime)

	s.AddXP(300)
	assert.Equal(t, 2, s.Level)
}

func TestUserStatsRetainThenRebuild(t *testing.T) {
	s := &UserStats{ExperiencePoints: 40}
	deleted := []*CompletionEvent{
		{Completed: true, TimeSpentMinutes: 30, Difficulty: DifficultyEasy},
		{Completed: true, TimeSpentMinutes: 30},
		{Completed: false, TimeSpentMinutes: 90, Difficulty: DifficultyHard},
	}
	assert.Equal(t, 2, s.Retain(deleted))
	assert.Equal(t, 0, s.TotalCompleted)

	live := []*CompletionEvent{{Completed: true, TimeSpentMinutes: 5, Difficulty: DifficultyHard}}
	s.RebuildCounters(live)
	assert.Equal(t, 3, s.TotalCompleted)
	assert.Equal(t, 65, s.TotalStudyTime)
	assert.Equal(t, 1, s.ProblemsEasy)
	assert.Equal(t, 1, s.ProblemsMedium)
	assert.Equal(t, 1, s.ProblemsHard)
	assert.Equal(t, 3, s.ProblemsTotal)
	assert.Equal(t, 40, s.ExperiencePoints)

	s.RebuildCounters(nil)
	assert.Equal(t, 2, s.TotalCompleted)
	assert.Equal(t, 60, s.TotalStudyTime)
}

func TestValidateWeeklyGoal(t *testing.T) {
	require.NoError(t, ValidateWeeklyGoal(1))
	require.NoError(t, ValidateWeeklyGoal(100))
	require.ErrorIs(t, ValidateWeeklyGoal(0), ErrInvalidArgument)
	require.ErrorIs(t, ValidateWeeklyGoal(101), ErrInvalidArgument)
}

func TestParseLeaderboardMetric(t *testing.T) {
	m, err := ParseLeaderboardMetric("")
	require.NoError(t, err)
	assert.Equal(t, LeaderboardXP, m)

	m, err = ParseLeaderboardMetric(" Streak ")
	require.NoError(t, err)
	assert.Equal(t, LeaderboardStreak, m)

	_, err = ParseLeaderboardMetric("karma")
	require.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, DefaultLeaderboardLimit, ClampLeaderboardLimit(0))
	assert.Equal(t, 25, ClampLeaderboardLimit(25))
	assert.Equal(t, MaxLeaderboardLimit, ClampLeaderboardLimit(1000))
}
