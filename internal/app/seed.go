package app

import (
	"context"

	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

// SeedAchievements upserts items into the catalog without starting the HTTP surface.
func SeedAchievements(ctx context.Context, log *logger.Logger, db *gorm.DB, items []*types.Achievement) error {
	r := wireRepos(db, log)
	svc := services.NewAchievementService(services.AchievementServiceDeps{
		DB:           db,
		Log:          log,
		Achievements: r.Achievement,
		Awards:       r.UserAchievement,
		Stats:        r.UserStats,
		Streaks:      r.StreakState,
		Roadmaps:     r.Roadmap,
	})
	return svc.SeedCatalog(ctx, items)
}
