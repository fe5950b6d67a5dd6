package progress

import (
	"time"

	"github.com/google/uuid"
)

// CompletionEvent is the live completion state of one task for one user. There is at most one
// row per (user, roadmap, module, task); unchecking flips Completed rather than deleting.
type CompletionEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completion_event_key,priority:1" json:"user_id"`
	RoadmapID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completion_event_key,priority:2;index" json:"roadmap_id"`
	ModuleID  string    `gorm:"column:module_id;type:varchar(128);not null;uniqueIndex:idx_completion_event_key,priority:3" json:"module_id"`
	TaskID    string    `gorm:"column:task_id;type:varchar(128);not null;uniqueIndex:idx_completion_event_key,priority:4" json:"task_id"`

	Completed        bool       `gorm:"not null;default:false" json:"completed"`
	Difficulty       Difficulty `gorm:"type:varchar(16);not null" json:"difficulty"`
	TimeSpentMinutes int        `gorm:"column:time_spent_minutes;not null;default:0" json:"time_spent_minutes"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	// CompletedOn is the local calendar day of CompletedAt; an uncheck reverts that day's count.
	CompletedOn string `gorm:"column:completed_on;type:varchar(10);index" json:"completed_on,omitempty"`

	Version   int       `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CompletionEvent) TableName() string { return "completion_events" }

// TaskRef addresses a single task inside a user's roadmap.
type TaskRef struct {
	UserID    uuid.UUID
	RoadmapID uuid.UUID
	ModuleID  string
	TaskID    string
}
