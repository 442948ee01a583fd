package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinic-scheduling-server/internal/scheduling"
)

// RespondError maps engine errors to responses. Unknown errors are logged
// with their cause and answered with a generic message.
func RespondError(c *gin.Context, err error) {
	var conflict *scheduling.ConflictError
	switch {
	case errors.As(err, &conflict):
		ErrorWithData(c, http.StatusConflict, "Scheduling conflict", conflict.Error(), conflict.Availability)
	case errors.Is(err, scheduling.ErrInvalidInput):
		BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, scheduling.ErrPreconditionFailed):
		PreconditionFailed(c, err.Error())
	default:
		GetLogger(c).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		InternalServerError(c, "An unexpected error occurred. Please try again later.")
	}
}
