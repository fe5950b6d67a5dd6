package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/roadmap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

const sseStreamRoute = "/api/sse/stream"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	RequestTimeout time.Duration

	AuthMiddleware *httpMW.AuthMiddleware
	RateLimiter    *httpMW.RateLimiter
	// ToggleRateLimit caps completion toggles per user per ToggleRateWindow. Zero disables it.
	ToggleRateLimit  int
	ToggleRateWindow time.Duration

	HealthHandler      *httpH.HealthHandler
	RealtimeHandler    *httpH.RealtimeHandler
	ProgressHandler    *httpH.ProgressHandler
	ActivityHandler    *httpH.ActivityHandler
	AchievementHandler *httpH.AchievementHandler
	StatsHandler       *httpH.StatsHandler
	RoadmapHandler     *httpH.RoadmapHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, sseStreamRoute))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))
	r.Use(httpMW.RequestTimeout(cfg.RequestTimeout, sseStreamRoute))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Completion ledger
		if cfg.ProgressHandler != nil {
			protected.POST("/tasks/:taskId/completion",
				cfg.RateLimiter.Limit("toggle", cfg.ToggleRateLimit, cfg.ToggleRateWindow),
				cfg.ProgressHandler.SetTaskCompletion,
			)
			protected.GET("/roadmaps/:id/progress", cfg.ProgressHandler.ListRoadmapProgress)
		}

		// Contribution calendar
		if cfg.ActivityHandler != nil {
			protected.GET("/activity", cfg.ActivityHandler.GetContributions)
		}

		// Achievements
		if cfg.AchievementHandler != nil {
			protected.GET("/achievements", cfg.AchievementHandler.ListEarned)
			protected.GET("/achievements/catalog", cfg.AchievementHandler.ListCatalog)
		}

		// Stats and streak
		if cfg.StatsHandler != nil {
			protected.GET("/stats", cfg.StatsHandler.GetStats)
			protected.POST("/stats/reconcile", cfg.StatsHandler.Reconcile)
			protected.PUT("/stats/weekly-goal", cfg.StatsHandler.SetWeeklyGoal)
			protected.GET("/stats/leaderboard", cfg.StatsHandler.GetLeaderboard)
			protected.GET("/streak", cfg.StatsHandler.GetStreak)
		}

		// Roadmaps
		if cfg.RoadmapHandler != nil {
			protected.POST("/roadmaps", cfg.RoadmapHandler.Import)
			protected.GET("/roadmaps", cfg.RoadmapHandler.List)
			protected.GET("/roadmaps/:id", cfg.RoadmapHandler.Get)
			protected.GET("/roadmaps/:id/analytics", cfg.RoadmapHandler.Analytics)
			protected.DELETE("/roadmaps/:id", cfg.RoadmapHandler.Delete)
		}
	}

	return r
}
