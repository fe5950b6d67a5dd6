package domain

import (
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

type Difficulty = progress.Difficulty
type CriteriaType = progress.CriteriaType

const (
	DifficultyEasy   = progress.DifficultyEasy
	DifficultyMedium = progress.DifficultyMedium
	DifficultyHard   = progress.DifficultyHard

	CriteriaTasksCompleted    = progress.CriteriaTasksCompleted
	CriteriaStreakDays        = progress.CriteriaStreakDays
	CriteriaRoadmapsCompleted = progress.CriteriaRoadmapsCompleted
	CriteriaTimeSpent         = progress.CriteriaTimeSpent
	CriteriaConsecutiveDays   = progress.CriteriaConsecutiveDays
)

type CompletionEvent = progress.CompletionEvent
type TaskRef = progress.TaskRef
type DailyActivity = progress.DailyActivity
type StreakState = progress.StreakState
type Achievement = progress.Achievement
type UserAchievement = progress.UserAchievement
type UserStats = progress.UserStats
type UserStatsSnapshot = progress.UserStatsSnapshot
type ProblemsSolved = progress.ProblemsSolved
type LeaderboardMetric = progress.LeaderboardMetric
type UserScore = progress.UserScore
type LeaderboardEntry = progress.LeaderboardEntry
type Leaderboard = progress.Leaderboard

type Roadmap = roadmap.Roadmap
type RoadmapModule = roadmap.RoadmapModule
type RoadmapTask = roadmap.RoadmapTask
type RoadmapAnalytics = roadmap.Analytics
type RoadmapSummary = roadmap.Summary

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&Roadmap{},
		&RoadmapModule{},
		&RoadmapTask{},
		&CompletionEvent{},
		&DailyActivity{},
		&StreakState{},
		&Achievement{},
		&UserAchievement{},
		&UserStats{},
	}
}
