package progress

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	XPPerCompletion   = 10
	XPPerLevel        = 300
	DefaultWeeklyGoal = 10
	MinWeeklyGoal     = 1
	MaxWeeklyGoal     = 100
)

// UserStats holds the running accumulators. Version backs optimistic concurrency.
type UserStats struct {
	UserID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	TotalCompleted   int       `gorm:"column:total_completed;not null;default:0" json:"total_completed"`
	ExperiencePoints int       `gorm:"column:experience_points;not null;default:0" json:"experience_points"`
	Level            int       `gorm:"not null;default:1" json:"level"`
	WeeklyGoal       int       `gorm:"column:weekly_goal;not null;default:10" json:"weekly_goal"`
	TotalStudyTime   int       `gorm:"column:total_study_time;not null;default:0" json:"total_study_time"`
	ProblemsEasy     int       `gorm:"column:problems_easy;not null;default:0" json:"problems_easy"`
	ProblemsMedium   int       `gorm:"column:problems_medium;not null;default:0" json:"problems_medium"`
	ProblemsHard     int       `gorm:"column:problems_hard;not null;default:0" json:"problems_hard"`
	ProblemsTotal    int       `gorm:"column:problems_total;not null;default:0" json:"problems_total"`
	Version          int       `gorm:"not null;default:1" json:"-"`
	CreatedAt        time.Time `gorm:"not null" json:"-"`
	UpdatedAt        time.Time `gorm:"not null" json:"-"`

	// Retained* hold completions whose ledger rows went away with a deleted roadmap. A ledger
	// replay starts from them.
	RetainedCompleted int `gorm:"column:retained_completed;not null;default:0" json:"-"`
	RetainedStudyTime int `gorm:"column:retained_study_time;not null;default:0" json:"-"`
	RetainedEasy      int `gorm:"column:retained_easy;not null;default:0" json:"-"`
	RetainedMedium    int `gorm:"column:retained_medium;not null;default:0" json:"-"`
	RetainedHard      int `gorm:"column:retained_hard;not null;default:0" json:"-"`
}

func (UserStats) TableName() string { return "user_stats" }

// LevelForXP is floor(xp/300)+1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

type ProblemsSolved struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
	Total  int `json:"total"`
}

// UserStatsSnapshot is the dashboard/profile read model. It is never stored.
type UserStatsSnapshot struct {
	TotalCompleted     int            `json:"total_completed"`
	ExperiencePoints   int            `json:"experience_points"`
	Level              int            `json:"level"`
	WeeklyGoal         int            `json:"weekly_goal"`
	WeeklyProgress     int            `json:"weekly_progress"`
	TotalStudyTime     int            `json:"total_study_time"`
	ProblemsSolved     ProblemsSolved `json:"problems_solved"`
	RoadmapsCompleted  int            `json:"roadmaps_completed"`
	TotalRoadmaps      int            `json:"total_roadmaps"`
	CurrentStreak      int            `json:"current_streak"`
	LongestStreak      int            `json:"longest_streak"`
	ActiveLearningDays int            `json:"active_learning_days"`
	LastActiveDate     *string        `json:"last_active_date"`
	StreakStartDate    *string        `json:"streak_start_date"`
	AsOf               time.Time      `json:"as_of"`
}

// ValidateWeeklyGoal bounds a user-chosen goal to [MinWeeklyGoal, MaxWeeklyGoal].
func ValidateWeeklyGoal(goal int) error {
	if goal < MinWeeklyGoal || goal > MaxWeeklyGoal {
		return fmt.Errorf("%w: weekly goal must be between %d and %d", ErrInvalidArgument, MinWeeklyGoal, MaxWeeklyGoal)
	}
	return nil
}
