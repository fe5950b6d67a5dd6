package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type ProgressHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{log: log.With("handler", "ProgressHandler"), progress: progress}
}

type toggleRequest struct {
	RoadmapID        uuid.UUID `json:"roadmap_id"`
	ModuleID         string    `json:"module_id"`
	Completed        *bool     `json:"completed"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
}

// POST /api/tasks/:taskId/completion
func (h *ProgressHandler) SetTaskCompletion(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Completed == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("completed is required"))
		return
	}
	out, err := h.progress.SetTaskCompletion(c.Request.Context(), userID, services.ToggleInput{
		RoadmapID:        req.RoadmapID,
		ModuleID:         req.ModuleID,
		TaskID:           c.Param("taskId"),
		Completed:        *req.Completed,
		TimeSpentMinutes: req.TimeSpentMinutes,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, "SetTaskCompletion", err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/roadmaps/:id/progress
func (h *ProgressHandler) ListRoadmapProgress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	roadmapID, ok := uuidParam(c, "id", "invalid_roadmap_id")
	if !ok {
		return
	}
	rows, err := h.progress.ListRoadmapProgress(c.Request.Context(), userID, roadmapID)
	if err != nil {
		response.RespondServiceError(c, h.log, "ListRoadmapProgress", err)
		return
	}
	response.RespondOK(c, gin.H{"progress": rows})
}
