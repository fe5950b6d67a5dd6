package repos

import (
	"github.com/yungbote/roadmap-backend/internal/data/repos/progress"
	"github.com/yungbote/roadmap-backend/internal/data/repos/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CompletionEventRepo = progress.CompletionEventRepo
type DailyActivityRepo = progress.DailyActivityRepo
type StreakStateRepo = progress.StreakStateRepo
type AchievementRepo = progress.AchievementRepo
type UserAchievementRepo = progress.UserAchievementRepo
type UserStatsRepo = progress.UserStatsRepo

type RoadmapRepo = roadmap.RoadmapRepo

func NewCompletionEventRepo(db *gorm.DB, baseLog *logger.Logger) CompletionEventRepo {
	return progress.NewCompletionEventRepo(db, baseLog)
}

func NewDailyActivityRepo(db *gorm.DB, baseLog *logger.Logger) DailyActivityRepo {
	return progress.NewDailyActivityRepo(db, baseLog)
}

func NewStreakStateRepo(db *gorm.DB, baseLog *logger.Logger) StreakStateRepo {
	return progress.NewStreakStateRepo(db, baseLog)
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return progress.NewAchievementRepo(db, baseLog)
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return progress.NewUserAchievementRepo(db, baseLog)
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	return progress.NewUserStatsRepo(db, baseLog)
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return roadmap.NewRoadmapRepo(db, baseLog)
}
