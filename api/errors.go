package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/monitoring"
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidRequest, msg)
}

// statusFor maps an error class to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, model.ErrReference):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Server errors are logged and reported.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		monitoring.CaptureException(err, map[string]string{
			monitoring.TagModule: "api",
			monitoring.TagPath:   c.Request.URL.Path,
		})
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
