package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/realtime/bus"
	"github.com/yungbote/roadmap-backend/internal/userlock"
)

// Clients holds the optional Redis-backed collaborators. All fields are nil when REDIS_ADDR
// is empty and the in-process fallbacks are used instead.
type Clients struct {
	Redis  goredis.UniversalClient
	SSEBus bus.Bus
	Locker userlock.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Info("REDIS_ADDR not set; using in-process user lock and SSE fan-out")
		return Clients{Locker: userlock.NewLocalLocker()}, nil
	}

	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    strings.Split(cfg.RedisAddr, ","),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("redis ping: %w", err)
	}

	sseBus, err := bus.NewRedisBus(log, rdb, cfg.RedisChannel)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
	}
	return Clients{
		Redis:  rdb,
		SSEBus: sseBus,
		Locker: userlock.NewRedisLocker(rdb, cfg.LockTTL, log),
	}, nil
}

func (c Clients) Close() error {
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
