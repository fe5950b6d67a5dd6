package middleware

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/ctxutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

var errRateLimited = errors.New("too many requests")

// windowScript increments the counter and arms its expiry in one step, so a key never
// outlives its window. A key left without a TTL is re-armed. Returns {count, pttl_ms}.
var windowScript = goredis.NewScript(`
local n = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if n == 1 or ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// RateLimiter is a fixed-window counter in Redis. A nil limiter lets everything through, and
// so does a Redis error.
type RateLimiter struct {
	rdb    goredis.UniversalClient
	log    *logger.Logger
	prefix string
}

func NewRateLimiter(rdb goredis.UniversalClient, log *logger.Logger) *RateLimiter {
	if rdb == nil {
		return nil
	}
	return &RateLimiter{rdb: rdb, log: log.With("middleware", "RateLimiter"), prefix: "rate_limit"}
}

// Limit allows limit requests per window per caller. Callers are keyed by user id when
// authenticated, otherwise by client IP.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) gin.HandlerFunc {
	if rl == nil || limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		caller := c.ClientIP()
		if userID := ctxutil.UserID(c.Request.Context()); userID != uuid.Nil {
			caller = userID.String()
		}
		key := fmt.Sprintf("%s:%s:%s", rl.prefix, keySuffix, caller)

		count, ttl, err := rl.hit(c, key, window)
		if err != nil {
			rl.log.Warn("Rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if count > int64(limit) {
			if ttl <= 0 {
				ttl = window
			}
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited", errRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) hit(c *gin.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := windowScript.Run(c, rl.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}
