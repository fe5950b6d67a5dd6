package userlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a lease lock shared across replicas: SET NX PX with a random token,
// polled until acquired or ctx ends.
type RedisLocker struct {
	rdb    goredis.UniversalClient
	log    *logger.Logger
	ttl    time.Duration
	retry  time.Duration
	prefix string
}

func NewRedisLocker(rdb goredis.UniversalClient, ttl time.Duration, baseLog *logger.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{
		rdb:    rdb,
		log:    baseLog.With("component", "RedisLocker"),
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		prefix: "progress:userlock:",
	}
}

func (l *RedisLocker) Lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := l.prefix + userID.String()
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		// release must not inherit a cancelled request context
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			l.log.Warn("redis unlock failed", "key", key, "error", err)
		}
	}, nil
}
