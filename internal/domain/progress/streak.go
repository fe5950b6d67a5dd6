package progress

import (
	"time"

	"github.com/google/uuid"
)

type StreakState struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	CurrentStreak   int       `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	LongestStreak   int       `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`
	StreakStartDate *string   `gorm:"column:streak_start_date;type:varchar(10)" json:"streak_start_date"`
	LastActiveDate  *string   `gorm:"column:last_active_date;type:varchar(10)" json:"last_active_date"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (StreakState) TableName() string { return "streak_states" }
