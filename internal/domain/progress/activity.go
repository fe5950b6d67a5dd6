package progress

import (
	"time"

	"github.com/google/uuid"
)

// MaxActivityLevel caps the contribution-calendar intensity bucket.
const MaxActivityLevel = 4

// DailyActivity is one contribution-calendar cell for a user.
type DailyActivity struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_activity_user_date,priority:1" json:"-"`
	Date           string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_daily_activity_user_date,priority:2" json:"date"`
	TasksCompleted int       `gorm:"column:tasks_completed;not null;default:0" json:"tasks_completed"`
	ActivityLevel  int       `gorm:"column:activity_level;not null;default:0" json:"activity_level"`
	CreatedAt      time.Time `gorm:"not null" json:"-"`
	UpdatedAt      time.Time `gorm:"not null" json:"-"`
}

func (DailyActivity) TableName() string { return "daily_activities" }

// ActivityLevel buckets a day's task count into 0..4: min(4, floor(n/2)).
func ActivityLevel(tasksCompleted int) int {
	if tasksCompleted <= 0 {
		return 0
	}
	lvl := tasksCompleted / 2
	if lvl > MaxActivityLevel {
		return MaxActivityLevel
	}
	return lvl
}
