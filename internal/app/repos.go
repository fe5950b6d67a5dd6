package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type Repos struct {
	CompletionEvent repos.CompletionEventRepo
	DailyActivity   repos.DailyActivityRepo
	StreakState     repos.StreakStateRepo
	Achievement     repos.AchievementRepo
	UserAchievement repos.UserAchievementRepo
	UserStats       repos.UserStatsRepo
	Roadmap         repos.RoadmapRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		CompletionEvent: repos.NewCompletionEventRepo(db, log),
		DailyActivity:   repos.NewDailyActivityRepo(db, log),
		StreakState:     repos.NewStreakStateRepo(db, log),
		Achievement:     repos.NewAchievementRepo(db, log),
		UserAchievement: repos.NewUserAchievementRepo(db, log),
		UserStats:       repos.NewUserStatsRepo(db, log),
		Roadmap:         repos.NewRoadmapRepo(db, log),
	}
}
