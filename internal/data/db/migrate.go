package db

import (
	"fmt"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureIndexes adds the indexes AutoMigrate cannot express.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct{ name, sql string }{
		{"idx_daily_activity_active", `CREATE INDEX IF NOT EXISTS idx_daily_activity_active ON daily_activities(user_id, date) WHERE tasks_completed > 0;`},
		{"idx_completion_event_user_completed", `CREATE INDEX IF NOT EXISTS idx_completion_event_user_completed ON completion_events(user_id, completed);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
