package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type RoadmapHandler struct {
	log      *logger.Logger
	roadmaps services.RoadmapService
}

func NewRoadmapHandler(log *logger.Logger, roadmaps services.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{log: log.With("handler", "RoadmapHandler"), roadmaps: roadmaps}
}

// POST /api/roadmaps
func (h *RoadmapHandler) Import(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req services.RoadmapImport
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rm, err := h.roadmaps.ImportRoadmap(c.Request.Context(), userID, &req)
	if err != nil {
		response.RespondServiceError(c, h.log, "ImportRoadmap", err)
		return
	}
	response.RespondCreated(c, gin.H{"roadmap": rm})
}

// GET /api/roadmaps
func (h *RoadmapHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.roadmaps.ListRoadmaps(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, h.log, "ListRoadmaps", err)
		return
	}
	response.RespondOK(c, gin.H{"roadmaps": list})
}

// GET /api/roadmaps/:id
func (h *RoadmapHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	roadmapID, ok := uuidParam(c, "id", "invalid_roadmap_id")
	if !ok {
		return
	}
	rm, err := h.roadmaps.GetRoadmap(c.Request.Context(), userID, roadmapID)
	if err != nil {
		response.RespondServiceError(c, h.log, "GetRoadmap", err)
		return
	}
	response.RespondOK(c, gin.H{"roadmap": rm})
}

// GET /api/roadmaps/:id/analytics
func (h *RoadmapHandler) Analytics(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	roadmapID, ok := uuidParam(c, "id", "invalid_roadmap_id")
	if !ok {
		return
	}
	a, err := h.roadmaps.Analytics(c.Request.Context(), userID, roadmapID)
	if err != nil {
		response.RespondServiceError(c, h.log, "RoadmapAnalytics", err)
		return
	}
	response.RespondOK(c, gin.H{"analytics": a})
}

// DELETE /api/roadmaps/:id
func (h *RoadmapHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	roadmapID, ok := uuidParam(c, "id", "invalid_roadmap_id")
	if !ok {
		return
	}
	if err := h.roadmaps.DeleteRoadmap(c.Request.Context(), userID, roadmapID); err != nil {
		response.RespondServiceError(c, h.log, "DeleteRoadmap", err)
		return
	}
	c.Status(http.StatusNoContent)
}
