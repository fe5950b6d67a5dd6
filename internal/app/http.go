package app

import (
	"context"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/http"
	httpH "github.com/yungbote/roadmap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/realtime"
)

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	RateLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Realtime     *httpH.RealtimeHandler
	Progress     *httpH.ProgressHandler
	Activity     *httpH.ActivityHandler
	Achievements *httpH.AchievementHandler
	Stats        *httpH.StatsHandler
	Roadmaps     *httpH.RoadmapHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub, db *gorm.DB, rdb goredis.UniversalClient) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return Handlers{
		Health:       httpH.NewHealthHandler(checks),
		Realtime:     httpH.NewRealtimeHandler(log, sseHub),
		Progress:     httpH.NewProgressHandler(log, services.Progress),
		Activity:     httpH.NewActivityHandler(log, services.Activity),
		Achievements: httpH.NewAchievementHandler(log, services.Achievements),
		Stats:        httpH.NewStatsHandler(log, services.Stats, services.Streak),
		Roadmaps:     httpH.NewRoadmapHandler(log, services.Roadmaps),
	}
}

func wireMiddleware(log *logger.Logger, services Services, clients Clients) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, services.Auth),
		RateLimiter: httpMW.NewRateLimiter(clients.Redis, log),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.OtelServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        serviceName,
		CORSOrigins:        cfg.AllowedOrigins(),
		RequestTimeout:     cfg.RequestTimeout,
		AuthMiddleware:     middleware.Auth,
		RateLimiter:        middleware.RateLimiter,
		ToggleRateLimit:    cfg.ToggleRateLimit,
		ToggleRateWindow:   cfg.ToggleRateWindow,
		HealthHandler:      handlers.Health,
		RealtimeHandler:    handlers.Realtime,
		ProgressHandler:    handlers.Progress,
		ActivityHandler:    handlers.Activity,
		AchievementHandler: handlers.Achievements,
		StatsHandler:       handlers.Stats,
		RoadmapHandler:     handlers.Roadmaps,
	})
}
