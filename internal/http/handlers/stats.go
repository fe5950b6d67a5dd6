package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/domain/progress"

	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type StatsHandler struct {
	log    *logger.Logger
	stats  services.StatsService
	streak services.StreakService
}

func NewStatsHandler(log *logger.Logger, stats services.StatsService, streak services.StreakService) *StatsHandler {
	return &StatsHandler{log: log.With("handler", "StatsHandler"), stats: stats, streak: streak}
}

// GET /api/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	snap, err := h.stats.Project(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, h.log, "GetStats", err)
		return
	}
	response.RespondOK(c, snap)
}

// POST /api/stats/reconcile
func (h *StatsHandler) Reconcile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	snap, err := h.stats.Reconcile(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, h.log, "Reconcile", err)
		return
	}
	response.RespondOK(c, snap)
}

type weeklyGoalRequest struct {
	WeeklyGoal *int `json:"weekly_goal"`
}

// PUT /api/stats/weekly-goal
func (h *StatsHandler) SetWeeklyGoal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req weeklyGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.WeeklyGoal == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("weekly_goal is required"))
		return
	}
	snap, err := h.stats.SetWeeklyGoal(c.Request.Context(), userID, *req.WeeklyGoal)
	if err != nil {
		response.RespondServiceError(c, h.log, "SetWeeklyGoal", err)
		return
	}
	response.RespondOK(c, snap)
}

// GET /api/stats/leaderboard?type=xp|streak|completed|roadmaps&limit=N
func (h *StatsHandler) GetLeaderboard(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	metric, err := progress.ParseLeaderboardMetric(c.Query("type"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_type", err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
	}
	board, err := h.stats.Leaderboard(c.Request.Context(), metric, limit)
	if err != nil {
		response.RespondServiceError(c, h.log, "GetLeaderboard", err)
		return
	}
	response.RespondOK(c, board)
}

// GET /api/streak
func (h *StatsHandler) GetStreak(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	st, err := h.streak.Current(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, h.log, "GetStreak", err)
		return
	}
	response.RespondOK(c, st)
}
