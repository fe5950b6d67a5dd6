package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/roadmap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/realtime"
	"github.com/yungbote/roadmap-backend/internal/services"
	"github.com/yungbote/roadmap-backend/internal/userlock"
)

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	auth   services.AuthService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	metrics := observability.NewMetrics()
	locker := userlock.NewLocalLocker()
	hub := realtime.NewSSEHub(log)
	notify := services.NewProgressNotifier(&services.HubEmitter{Hub: hub})

	events := repos.NewCompletionEventRepo(db, log)
	activityRepo := repos.NewDailyActivityRepo(db, log)
	streakRepo := repos.NewStreakStateRepo(db, log)
	statsRepo := repos.NewUserStatsRepo(db, log)
	roadmapRepo := repos.NewRoadmapRepo(db, log)

	auth := services.NewAuthService(log, "router-test-secret", time.Hour)
	activity := services.NewActivityService(db, log, activityRepo)
	streak := services.NewStreakService(log, activityRepo, streakRepo, nil)
	achievements := services.NewAchievementService(services.AchievementServiceDeps{
		DB: db, Log: log,
		Achievements: repos.NewAchievementRepo(db, log),
		Awards:       repos.NewUserAchievementRepo(db, log),
		Stats:        statsRepo, Streaks: streakRepo, Roadmaps: roadmapRepo,
		Metrics: metrics,
	})
	stats := services.NewStatsService(services.StatsServiceDeps{
		DB: db, Log: log, Stats: statsRepo, Streaks: streakRepo, Events: events, Activity: activityRepo,
		Roadmaps: roadmapRepo, Streak: streak, Locker: locker, Metrics: metrics,
	})
	roadmaps := services.NewRoadmapService(services.RoadmapServiceDeps{
		DB: db, Log: log, Roadmaps: roadmapRepo, Events: events, Stats: statsRepo, Locker: locker,
		Metrics: metrics, Notify: notify,
	})
	progress := services.NewProgressService(services.ProgressServiceDeps{
		DB: db, Log: log, Events: events, Roadmaps: roadmapRepo, RoadmapSvc: roadmaps,
		Activity: activity, Streak: streak, Achievements: achievements, Stats: stats,
		Locker: locker, Notify: notify, Metrics: metrics,
	})

	engine := NewRouter(RouterConfig{
		Log:                log,
		Metrics:            metrics,
		RequestTimeout:     5 * time.Second,
		AuthMiddleware:     httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:      httpH.NewHealthHandler(nil),
		RealtimeHandler:    httpH.NewRealtimeHandler(log, hub),
		ProgressHandler:    httpH.NewProgressHandler(log, progress),
		ActivityHandler:    httpH.NewActivityHandler(log, activity),
		AchievementHandler: httpH.NewAchievementHandler(log, achievements),
		StatsHandler:       httpH.NewStatsHandler(log, stats, streak),
		RoadmapHandler:     httpH.NewRoadmapHandler(log, roadmaps),
	})
	return &testAPI{t: t, engine: engine, auth: auth}
}

func (a *testAPI) do(userID uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		token, err := a.auth.MintToken(userID, time.Minute)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func importRoadmap(t *testing.T, api *testAPI, userID uuid.UUID) string {
	t.Helper()
	rec := api.do(userID, http.MethodPost, "/api/roadmaps", map[string]any{
		"title":      "Algorithms",
		"difficulty": "beginner",
		"tags":       []string{"dsa"},
		"modules": []map[string]any{
			{"id": "arrays", "title": "Arrays", "tasks": []map[string]any{
				{"id": "two-sum", "title": "Two Sum", "difficulty": "Easy", "type": "Practice"},
				{"id": "3sum", "title": "3Sum", "difficulty": "Medium", "type": "Practice"},
			}},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[struct {
		Roadmap struct {
			ID string `json:"id"`
		} `json:"roadmap"`
	}](t, rec)
	return body.Roadmap.ID
}

func TestHealthcheckIsPublic(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(uuid.Nil, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(uuid.Nil, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToggleFlow(t *testing.T) {
	api := newTestAPI(t)
	userID := uuid.New()
	roadmapID := importRoadmap(t, api, userID)

	rec := api.do(userID, http.MethodPost, "/api/tasks/two-sum/completion", map[string]any{
		"roadmap_id":         roadmapID,
		"module_id":          "arrays",
		"completed":          true,
		"time_spent_minutes": 12,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[struct {
		Changed  bool `json:"changed"`
		Degraded bool `json:"degraded"`
		Snapshot struct {
			TotalCompleted int `json:"total_completed"`
			Experience     int `json:"experience_points"`
			WeeklyProgress int `json:"weekly_progress"`
		} `json:"snapshot"`
		Streak struct {
			CurrentStreak int `json:"current_streak"`
		} `json:"streak"`
	}](t, rec)
	assert.True(t, out.Changed)
	assert.False(t, out.Degraded)
	assert.Equal(t, 1, out.Snapshot.TotalCompleted)
	assert.Equal(t, 10, out.Snapshot.Experience)
	assert.Equal(t, 1, out.Snapshot.WeeklyProgress)
	assert.Equal(t, 1, out.Streak.CurrentStreak)

	rec = api.do(userID, http.MethodGet, "/api/roadmaps/"+roadmapID+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	prog := decode[struct {
		Progress []struct {
			TaskID    string `json:"task_id"`
			Completed bool   `json:"completed"`
		} `json:"progress"`
	}](t, rec)
	require.Len(t, prog.Progress, 1)
	assert.Equal(t, "two-sum", prog.Progress[0].TaskID)

	rec = api.do(userID, http.MethodGet, "/api/roadmaps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Roadmaps []struct {
			Progress int `json:"progress"`
		} `json:"roadmaps"`
	}](t, rec)
	require.Len(t, list.Roadmaps, 1)
	assert.Equal(t, 50, list.Roadmaps[0].Progress)

	year := time.Now().Year()
	rec = api.do(userID, http.MethodGet, "/api/activity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[struct {
		Year  int `json:"year"`
		Days  []struct {
			Date           string `json:"date"`
			TasksCompleted int    `json:"tasks_completed"`
		} `json:"days"`
		Total      int `json:"total"`
		ActiveDays int `json:"active_days"`
	}](t, rec)
	assert.Equal(t, year, cal.Year)
	assert.True(t, len(cal.Days) == 365 || len(cal.Days) == 366)
	assert.Equal(t, 1, cal.Total)
	assert.Equal(t, 1, cal.ActiveDays)

	rec = api.do(userID, http.MethodGet, "/api/streak", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"current_streak":1`)
}

func TestToggleErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	owner := uuid.New()
	roadmapID := importRoadmap(t, api, owner)

	cases := []struct {
		name   string
		userID uuid.UUID
		path   string
		body   map[string]any
		status int
		code   string
	}{
		{"missing completed", owner, "/api/tasks/two-sum/completion",
			map[string]any{"roadmap_id": roadmapID, "module_id": "arrays"}, http.StatusBadRequest, "invalid_request"},
		{"bad roadmap id", owner, "/api/tasks/two-sum/completion",
			map[string]any{"roadmap_id": "nope", "module_id": "arrays", "completed": true}, http.StatusBadRequest, "invalid_request"},
		{"negative minutes", owner, "/api/tasks/two-sum/completion",
			map[string]any{"roadmap_id": roadmapID, "module_id": "arrays", "completed": true, "time_spent_minutes": -3}, http.StatusBadRequest, "invalid_argument"},
		{"unknown task", owner, "/api/tasks/missing/completion",
			map[string]any{"roadmap_id": roadmapID, "module_id": "arrays", "completed": true}, http.StatusNotFound, "not_found"},
		{"unknown roadmap", owner, "/api/tasks/two-sum/completion",
			map[string]any{"roadmap_id": uuid.NewString(), "module_id": "arrays", "completed": true}, http.StatusNotFound, "not_found"},
		{"foreign roadmap", uuid.New(), "/api/tasks/two-sum/completion",
			map[string]any{"roadmap_id": roadmapID, "module_id": "arrays", "completed": true}, http.StatusForbidden, "access_denied"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(tc.userID, http.MethodPost, tc.path, tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[errorBody](t, rec).Error.Code)
		})
	}
}

func TestRoadmapEndpoints(t *testing.T) {
	api := newTestAPI(t)
	owner := uuid.New()
	roadmapID := importRoadmap(t, api, owner)

	rec := api.do(owner, http.MethodGet, "/api/roadmaps/"+roadmapID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"two-sum"`)

	rec = api.do(owner, http.MethodGet, "/api/roadmaps/"+roadmapID+"/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_tasks":2`)

	rec = api.do(owner, http.MethodGet, "/api/roadmaps/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(uuid.New(), http.MethodDelete, "/api/roadmaps/"+roadmapID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(owner, http.MethodDelete, "/api/roadmaps/"+roadmapID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(owner, http.MethodGet, "/api/roadmaps/"+roadmapID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsAndAchievementEndpoints(t *testing.T) {
	api := newTestAPI(t)
	userID := uuid.New()

	rec := api.do(userID, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"level":1`)

	rec = api.do(userID, http.MethodPost, "/api/stats/reconcile", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(userID, http.MethodGet, "/api/achievements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"achievements":[]}`, rec.Body.String())

	rec = api.do(userID, http.MethodGet, "/api/achievements/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(userID, http.MethodGet, "/api/achievements/catalog?include_inactive=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(userID, http.MethodGet, "/api/achievements/catalog?include_inactive=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(userID, http.MethodGet, "/api/activity?year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(userID, http.MethodGet, "/api/activity?year=20000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeeklyGoalEndpoint(t *testing.T) {
	api := newTestAPI(t)
	userID := uuid.New()

	rec := api.do(userID, http.MethodPut, "/api/stats/weekly-goal", map[string]any{"weekly_goal": 25})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[struct {
		WeeklyGoal int `json:"weekly_goal"`
	}](t, rec)
	assert.Equal(t, 25, snap.WeeklyGoal)

	rec = api.do(userID, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"weekly_goal":25`)

	for _, body := range []map[string]any{
		{"weekly_goal": 0},
		{"weekly_goal": 101},
		{"weekly_goal": -3},
		{},
	} {
		rec = api.do(userID, http.MethodPut, "/api/stats/weekly-goal", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %v", body)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	api := newTestAPI(t)
	leader, runnerUp := uuid.New(), uuid.New()

	for _, u := range []struct {
		id    uuid.UUID
		tasks []string
	}{
		{leader, []string{"two-sum", "3sum"}},
		{runnerUp, []string{"two-sum"}},
	} {
		roadmapID := importRoadmap(t, api, u.id)
		for _, task := range u.tasks {
			rec := api.do(u.id, http.MethodPost, "/api/tasks/"+task+"/completion", map[string]any{
				"roadmap_id": roadmapID,
				"module_id":  "arrays",
				"completed":  true,
			})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}
	}

	type board struct {
		Type    string `json:"type"`
		Entries []struct {
			Rank   int       `json:"rank"`
			UserID uuid.UUID `json:"user_id"`
			Value  int       `json:"value"`
		} `json:"entries"`
	}

	rec := api.do(leader, http.MethodGet, "/api/stats/leaderboard?type=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[board](t, rec)
	assert.Equal(t, "completed", got.Type)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, 1, got.Entries[0].Rank)
	assert.Equal(t, leader, got.Entries[0].UserID)
	assert.Equal(t, 2, got.Entries[0].Value)
	assert.Equal(t, 2, got.Entries[1].Rank)
	assert.Equal(t, runnerUp, got.Entries[1].UserID)

	rec = api.do(leader, http.MethodGet, "/api/stats/leaderboard?type=roadmaps&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[board](t, rec)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, leader, got.Entries[0].UserID)

	rec = api.do(leader, http.MethodGet, "/api/stats/leaderboard?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[board](t, rec)
	assert.Equal(t, "xp", got.Type)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, leader, got.Entries[0].UserID)

	rec = api.do(leader, http.MethodGet, "/api/stats/leaderboard?type=karma", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(leader, http.MethodGet, "/api/stats/leaderboard?limit=ten", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(uuid.Nil, http.MethodGet, "/healthcheck", nil)
	rec := api.do(uuid.Nil, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/healthcheck")
}
