package progress

import (
	"time"

	"github.com/google/uuid"
)

type CriteriaType string

const (
	CriteriaTasksCompleted    CriteriaType = "tasks_completed"
	CriteriaStreakDays        CriteriaType = "streak_days"
	CriteriaRoadmapsCompleted CriteriaType = "roadmaps_completed"
	// CriteriaTimeSpent thresholds are in minutes.
	CriteriaTimeSpent CriteriaType = "time_spent"
	// CriteriaConsecutiveDays compares against the longest streak ever reached.
	CriteriaConsecutiveDays CriteriaType = "consecutive_days"
)

// Achievement is a catalog entry. Seeded at startup, never user-owned.
type Achievement struct {
	ID            string       `gorm:"type:varchar(64);primaryKey" json:"id" yaml:"id"`
	Title         string       `gorm:"not null" json:"title" yaml:"title"`
	Description   string       `json:"description" yaml:"description"`
	Category      string       `gorm:"type:varchar(32);not null" json:"category" yaml:"category"`
	CriteriaType  CriteriaType `gorm:"column:criteria_type;type:varchar(32);not null" json:"criteria_type" yaml:"criteria_type"`
	CriteriaValue int          `gorm:"column:criteria_value;not null" json:"criteria_value" yaml:"criteria_value"`
	RewardXP      int          `gorm:"column:reward_xp;not null;default:0" json:"reward_xp" yaml:"reward_xp"`
	SortOrder     int          `gorm:"column:sort_order;not null;default:0" json:"sort_order" yaml:"sort_order"`
	IsActive      bool         `gorm:"column:is_active;not null" json:"is_active" yaml:"is_active"`
	CreatedAt     time.Time    `gorm:"not null" json:"-" yaml:"-"`
	UpdatedAt     time.Time    `gorm:"not null" json:"-" yaml:"-"`
}

func (Achievement) TableName() string { return "achievements" }

// UserAchievement is an award. Unique per (user, achievement) and never revoked.
type UserAchievement struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID string       `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	EarnedAt      time.Time    `gorm:"not null" json:"earned_at"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID;references:ID" json:"achievement,omitempty"`
}

func (UserAchievement) TableName() string { return "user_achievements" }
