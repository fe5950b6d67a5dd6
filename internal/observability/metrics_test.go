package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/tasks/:taskId/completion", "200", 20*time.Millisecond)
	m.ObserveAPI("GET", "/api/stats", "500", time.Second)
	m.IncToggle("changed")
	m.IncAchievementAwarded("first_steps")
	m.IncDegraded("streak")
	m.ObserveLockWait("acquired", time.Millisecond)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`api_requests_total{method="POST",route="/api/tasks/:taskId/completion",status="200"} 1.000000`,
		`api_requests_error_total 1.000000`,
		`progress_toggles_total{outcome="changed"} 1.000000`,
		`progress_achievements_awarded_total{achievement="first_steps"} 1.000000`,
		`progress_degraded_total{stage="streak"} 1.000000`,
		`progress_user_lock_wait_seconds_bucket{result="acquired",le="0.001"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncToggle("noop")
	m.ApiInflightInc()
	m.ApiInflightDec()

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("nil metrics status: want=503 got=%d", rec.Code)
	}
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders(" api-key = abc , bad, x=1 ")
	if h["api-key"] != "abc" || h["x"] != "1" || len(h) != 2 {
		t.Fatalf("unexpected headers: %#v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty input should give nil")
	}
}
