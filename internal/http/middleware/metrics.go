package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/observability"
)

// Metrics records per-route request latency. Long-lived SSE streams are counted in flight
// only, since their duration says nothing about handler latency.
func Metrics(m *observability.Metrics, streamRoutes ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	streaming := make(map[string]bool, len(streamRoutes))
	for _, r := range streamRoutes {
		streaming[r] = true
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if streaming[route] {
			return
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
