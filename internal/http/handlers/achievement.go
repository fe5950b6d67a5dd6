package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type AchievementHandler struct {
	log          *logger.Logger
	achievements services.AchievementService
}

func NewAchievementHandler(log *logger.Logger, achievements services.AchievementService) *AchievementHandler {
	return &AchievementHandler{log: log.With("handler", "AchievementHandler"), achievements: achievements}
}

// GET /api/achievements
func (h *AchievementHandler) ListEarned(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	earned, err := h.achievements.ListUserAchievements(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, h.log, "ListEarned", err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": earned})
}

// GET /api/achievements/catalog?include_inactive=true
func (h *AchievementHandler) ListCatalog(c *gin.Context) {
	includeInactive := false
	if raw := c.Query("include_inactive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_include_inactive", err)
			return
		}
		includeInactive = v
	}
	catalog, err := h.achievements.ListCatalog(c.Request.Context(), includeInactive)
	if err != nil {
		response.RespondServiceError(c, h.log, "ListCatalog", err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": catalog})
}
