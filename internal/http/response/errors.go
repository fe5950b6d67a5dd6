package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/platform/apierr"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

var errStorage = errors.New("storage failure")

// FromError maps a service error onto its HTTP form.
func FromError(err error) *apierr.Error {
	if ae := apierr.As(err); ae != nil {
		return ae
	}
	switch {
	case errors.Is(err, progress.ErrInvalidArgument):
		return apierr.BadRequest("invalid_argument", err)
	case errors.Is(err, progress.ErrNotFound):
		return apierr.NotFound(err)
	case errors.Is(err, progress.ErrAccessDenied):
		return apierr.Forbidden(err)
	case errors.Is(err, progress.ErrConflictingUpdate):
		return apierr.Conflict(err)
	default:
		return apierr.Internal(err)
	}
}

// RespondServiceError writes the mapped error. Server-side failures are logged and their
// detail is kept out of the body.
func RespondServiceError(c *gin.Context, log *logger.Logger, op string, err error) {
	ae := FromError(err)
	if ae.Status >= http.StatusInternalServerError {
		if log != nil {
			log.Error(op+" failed", "error", err, "path", c.FullPath())
		}
		RespondError(c, ae.Status, ae.Code, errStorage)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
