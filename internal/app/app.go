package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/catalog"
	"github.com/yungbote/roadmap-backend/internal/data/db"
	httpserver "github.com/yungbote/roadmap-backend/internal/http"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// Bootstrap builds the logger, config and database without the HTTP surface.
// The CLI migrate and seed commands stop here.
func Bootstrap(configPath string) (*logger.Logger, Config, *db.Service, error) {
	bootLog, err := logger.New("development")
	if err != nil {
		return nil, Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	bootLog.Info("Loading configuration...")
	cfg, err := LoadConfig(bootLog, configPath)
	if err != nil {
		bootLog.Sync()
		return nil, Config{}, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		bootLog.Sync()
		return nil, Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	bootLog.Sync()

	dbService, err := db.Open(cfg.DBConfig(), log)
	if err != nil {
		log.Sync()
		return nil, Config{}, nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, Config{}, nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureIndexes(dbService.DB()); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, Config{}, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return log, cfg, dbService, nil
}

func New(ctx context.Context, configPath string) (*App, error) {
	log, cfg, dbService, err := Bootstrap(configPath)
	if err != nil {
		return nil, err
	}
	theDB := dbService.DB()

	otelShutdown := observability.InitOTel(ctx, log, cfg.OtelConfig())

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		if otelShutdown != nil {
			_ = otelShutdown(ctx)
		}
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	ssehub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, ssehub, metrics)
	handlerset := wireHandlers(log, serviceset, ssehub, theDB, clients.Redis)
	middleware := wireMiddleware(log, serviceset, clients)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the cross-replica SSE forwarder, the pool collectors
// and the optional catalog seed.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
		a.Log.Info("SSE forwarder started", "channel", a.Cfg.RedisChannel)
	}

	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}

	if a.Cfg.SeedOnStart {
		items, err := catalog.Default()
		if err != nil {
			return fmt.Errorf("load achievement catalog: %w", err)
		}
		if err := a.Services.Achievements.SeedCatalog(ctx, items); err != nil {
			return fmt.Errorf("seed achievement catalog: %w", err)
		}
	}
	return nil
}

// Run serves HTTP until ctx is cancelled. Open SSE streams are closed when draining starts.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := &httpserver.Server{Engine: a.Router}
	a.Log.Info("Listening", "addr", a.Cfg.Addr())
	return srv.Run(ctx, a.Cfg.Addr(), a.Cfg.ShutdownGrace, a.SSEHub.CloseAll)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownGrace)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if err := a.Clients.Close(); err != nil && a.Log != nil {
		a.Log.Warn("redis close failed", "error", err)
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil && a.Log != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
