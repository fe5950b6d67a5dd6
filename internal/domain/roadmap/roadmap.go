package roadmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

const (
	TaskTypeTheory   = "Theory"
	TaskTypePractice = "Practice"
	TaskTypeProject  = "Project"
)

// Roadmap is a generated learning plan owned by a single user.
type Roadmap struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	Difficulty  string         `gorm:"type:varchar(16);not null;default:'beginner'" json:"difficulty"`
	Category    string         `gorm:"type:varchar(64)" json:"category"`
	Tags        datatypes.JSON `gorm:"column:tags" json:"tags"`
	AIProvider  string         `gorm:"column:ai_provider;type:varchar(32)" json:"ai_provider"`

	Modules []*RoadmapModule `gorm:"foreignKey:RoadmapID;references:ID" json:"modules,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Roadmap) TableName() string { return "roadmaps" }

type RoadmapModule struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	RoadmapID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_roadmap_module_key,priority:1" json:"-"`
	ModuleKey   string    `gorm:"column:module_key;type:varchar(128);not null;uniqueIndex:idx_roadmap_module_key,priority:2" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Difficulty  string    `gorm:"type:varchar(16)" json:"difficulty"`
	Position    int       `gorm:"not null;default:0" json:"position"`

	Tasks []*RoadmapTask `gorm:"-" json:"tasks,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

func (RoadmapModule) TableName() string { return "roadmap_modules" }

type RoadmapTask struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	RoadmapID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_roadmap_task_key,priority:1" json:"-"`
	ModuleKey  string    `gorm:"column:module_key;type:varchar(128);not null;uniqueIndex:idx_roadmap_task_key,priority:2" json:"module_id"`
	TaskKey    string    `gorm:"column:task_key;type:varchar(128);not null;uniqueIndex:idx_roadmap_task_key,priority:3" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Difficulty string    `gorm:"type:varchar(16);not null" json:"difficulty"`
	TaskType   string    `gorm:"column:task_type;type:varchar(16)" json:"type"`
	Position   int       `gorm:"not null;default:0" json:"position"`

	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

func (RoadmapTask) TableName() string { return "roadmap_tasks" }

// Analytics summarises one roadmap against its owner's completion ledger.
type Analytics struct {
	RoadmapID              uuid.UUID      `json:"roadmap_id"`
	TotalModules           int            `json:"total_modules"`
	CompletedModules       int            `json:"completed_modules"`
	TotalTasks             int            `json:"total_tasks"`
	CompletedTasks         int            `json:"completed_tasks"`
	Progress               int            `json:"progress"`
	TimeSpentMinutes       int            `json:"time_spent_minutes"`
	DifficultyDistribution map[string]int `json:"difficulty_distribution"`
}

// Summary is a list row with completion percentage.
type Summary struct {
	Roadmap        *Roadmap `json:"roadmap"`
	TotalTasks     int      `json:"total_tasks"`
	CompletedTasks int      `json:"completed_tasks"`
	Progress       int      `json:"progress"`
}

// ProgressPercent rounds completed/total to the nearest whole percent.
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (completed*100 + total/2) / total
}
