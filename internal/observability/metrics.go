package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// Metrics is a small Prometheus text-format registry. A nil *Metrics is a valid no-op.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	toggles      *CounterVec
	awards       *CounterVec
	degraded     *CounterVec
	lockWait     *HistogramVec
	dbStats      *GaugeVec
	redisUp      *Gauge
	redisPing    *Gauge
	scrapeEvery  time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("api_requests_total", "HTTP requests by method, route and status", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("api_request_duration_seconds", "HTTP request latency", []string{"method", "route", "status"}, nil),
		apiInflight: NewGauge("api_requests_inflight", "HTTP requests currently being served"),
		apiReqTotal: NewCounter("api_requests_all_total", "All HTTP requests"),
		apiReqError: NewCounter("api_requests_error_total", "HTTP requests answered with 5xx"),

		toggles:     NewCounterVec("progress_toggles_total", "Task completion toggles by outcome", []string{"outcome"}),
		awards:      NewCounterVec("progress_achievements_awarded_total", "Achievements awarded", []string{"achievement"}),
		degraded:    NewCounterVec("progress_degraded_total", "Toggles whose downstream step failed after commit", []string{"stage"}),
		lockWait:    NewHistogramVec("progress_user_lock_wait_seconds", "Time spent waiting for the per-user lock", []string{"result"}, []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}),
		dbStats:     NewGaugeVec("db_pool", "database/sql pool statistics", []string{"stat"}),
		redisUp:     NewGauge("redis_up", "1 when the last Redis ping succeeded"),
		redisPing:   NewGauge("redis_ping_seconds", "Latency of the last Redis ping"),
		scrapeEvery: 10 * time.Second,
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	for _, fn := range []func() error{
		func() error { return m.apiRequests.WritePrometheus(w) },
		func() error { return m.apiLatency.WritePrometheus(w) },
		func() error { return m.apiInflight.WritePrometheus(w) },
		func() error { return m.apiReqTotal.WritePrometheus(w) },
		func() error { return m.apiReqError.WritePrometheus(w) },
		func() error { return m.toggles.WritePrometheus(w) },
		func() error { return m.awards.WritePrometheus(w) },
		func() error { return m.degraded.WritePrometheus(w) },
		func() error { return m.lockWait.WritePrometheus(w) },
		func() error { return m.dbStats.WritePrometheus(w) },
		func() error { return m.redisUp.WritePrometheus(w) },
		func() error { return m.redisPing.WritePrometheus(w) },
	} {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// IncToggle records a toggle outcome: changed, noop, conflict or error.
func (m *Metrics) IncToggle(outcome string) {
	if m == nil {
		return
	}
	m.toggles.Inc(outcome)
}

func (m *Metrics) IncAchievementAwarded(achievementID string) {
	if m == nil {
		return
	}
	m.awards.Inc(achievementID)
}

func (m *Metrics) IncDegraded(stage string) {
	if m == nil {
		return
	}
	m.degraded.Inc(stage)
}

func (m *Metrics) ObserveLockWait(result string, dur time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(dur.Seconds(), result)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	if len(status) < 3 {
		return false
	}
	return status[0] == '5'
}
