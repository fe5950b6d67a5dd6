package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/realtime"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Activity     services.ActivityService
	Streak       services.StreakService
	Achievements services.AchievementService
	Stats        services.StatsService
	Roadmaps     services.RoadmapService
	Progress     services.ProgressService
	Notifier     services.ProgressNotifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, hub *realtime.SSEHub, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus, Log: log}
	}
	notifier := services.NewProgressNotifier(emitter)

	auth := services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	activity := services.NewActivityService(db, log, repos.DailyActivity)
	streak := services.NewStreakService(log, repos.DailyActivity, repos.StreakState, nil)
	achievements := services.NewAchievementService(services.AchievementServiceDeps{
		DB:           db,
		Log:          log,
		Achievements: repos.Achievement,
		Awards:       repos.UserAchievement,
		Stats:        repos.UserStats,
		Streaks:      repos.StreakState,
		Roadmaps:     repos.Roadmap,
		Metrics:      metrics,
		WeeklyGoal:   cfg.WeeklyGoal,
	})
	stats := services.NewStatsService(services.StatsServiceDeps{
		DB:         db,
		Log:        log,
		Stats:      repos.UserStats,
		Streaks:    repos.StreakState,
		Events:     repos.CompletionEvent,
		Activity:   repos.DailyActivity,
		Roadmaps:   repos.Roadmap,
		Streak:     streak,
		Locker:     clients.Locker,
		Metrics:    metrics,
		WeeklyGoal: cfg.WeeklyGoal,
	})
	roadmaps := services.NewRoadmapService(services.RoadmapServiceDeps{
		DB:         db,
		Log:        log,
		Roadmaps:   repos.Roadmap,
		Events:     repos.CompletionEvent,
		Stats:      repos.UserStats,
		Locker:     clients.Locker,
		Metrics:    metrics,
		Notify:     notifier,
		WeeklyGoal: cfg.WeeklyGoal,
	})
	progress := services.NewProgressService(services.ProgressServiceDeps{
		DB:           db,
		Log:          log,
		Events:       repos.CompletionEvent,
		Roadmaps:     repos.Roadmap,
		RoadmapSvc:   roadmaps,
		Activity:     activity,
		Streak:       streak,
		Achievements: achievements,
		Stats:        stats,
		Locker:       clients.Locker,
		Notify:       notifier,
		Metrics:      metrics,
	})

	return Services{
		Auth:         auth,
		Activity:     activity,
		Streak:       streak,
		Achievements: achievements,
		Stats:        stats,
		Roadmaps:     roadmaps,
		Progress:     progress,
		Notifier:     notifier,
	}
}
