package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type ActivityHandler struct {
	log      *logger.Logger
	activity services.ActivityService
}

func NewActivityHandler(log *logger.Logger, activity services.ActivityService) *ActivityHandler {
	return &ActivityHandler{log: log.With("handler", "ActivityHandler"), activity: activity}
}

// GET /api/activity?year=YYYY
func (h *ActivityHandler) GetContributions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_year", err)
			return
		}
		year = y
	}
	cal, err := h.activity.ContributionSummary(c.Request.Context(), userID, year)
	if err != nil {
		response.RespondServiceError(c, h.log, "GetContributions", err)
		return
	}
	response.RespondOK(c, cal)
}
