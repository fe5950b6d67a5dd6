package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
)

// TaskSeed describes one task for SeedRoadmap.
type TaskSeed struct {
	Module     string
	Task       string
	Difficulty types.Difficulty
}

// SeedRoadmap stores a roadmap owned by userID with the given tasks, grouping them into
// modules in first-seen order.
func SeedRoadmap(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, tasks ...TaskSeed) *types.Roadmap {
	tb.Helper()
	rm := &types.Roadmap{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      "Go fundamentals",
		Difficulty: "beginner",
		Tags:       datatypes.JSON([]byte(`["go"]`)),
	}
	if err := tx.WithContext(ctx).Omit("Modules").Create(rm).Error; err != nil {
		tb.Fatalf("seed roadmap: %v", err)
	}
	seen := map[string]bool{}
	for i, ts := range tasks {
		if !seen[ts.Module] {
			seen[ts.Module] = true
			m := &types.RoadmapModule{
				ID:        uuid.New(),
				RoadmapID: rm.ID,
				ModuleKey: ts.Module,
				Title:     fmt.Sprintf("Module %s", ts.Module),
				Position:  len(seen),
			}
			if err := tx.WithContext(ctx).Create(m).Error; err != nil {
				tb.Fatalf("seed module: %v", err)
			}
		}
		d := ts.Difficulty
		if d == "" {
			d = types.DifficultyMedium
		}
		task := &types.RoadmapTask{
			ID:         uuid.New(),
			RoadmapID:  rm.ID,
			ModuleKey:  ts.Module,
			TaskKey:    ts.Task,
			Title:      fmt.Sprintf("Task %s", ts.Task),
			Difficulty: string(d),
			TaskType:   "Practice",
			Position:   i,
		}
		if err := tx.WithContext(ctx).Create(task).Error; err != nil {
			tb.Fatalf("seed task: %v", err)
		}
	}
	return rm
}

func SeedCatalog(tb testing.TB, ctx context.Context, tx *gorm.DB, items ...*types.Achievement) {
	tb.Helper()
	for _, a := range items {
		if err := tx.WithContext(ctx).Create(a).Error; err != nil {
			tb.Fatalf("seed achievement %s: %v", a.ID, err)
		}
	}
}
