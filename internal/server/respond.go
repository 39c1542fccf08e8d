package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/waypoint/internal/editbuffer"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/service"
	tmpl "github.com/alexanderramin/waypoint/internal/template"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrFeatureDisabled):
		return http.StatusForbidden
	case errors.Is(err, editbuffer.ErrUnknownItem), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrReplaceNotConfirmed),
		errors.Is(err, editbuffer.ErrPublishInFlight),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmptyTemplate),
		errors.Is(err, service.ErrEmptyTimeline),
		errors.Is(err, editbuffer.ErrInvalidField),
		errors.Is(err, editbuffer.ErrIndexOutOfRange),
		errors.Is(err, tmpl.ErrInvalidDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs server-side failures and returns a JSON error envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	s.respondErrorWith(c, statusFor(err), err, nil)
}

// respondErrorWith also carries a partial result alongside the error.
func (s *Server) respondErrorWith(c *gin.Context, status int, err error, partial any) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	body := gin.H{"error": err.Error()}
	if partial != nil {
		body["data"] = partial
	}
	c.AbortWithStatusJSON(status, body)
}

var errEnabledRequired = errors.New("enabled is required")

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", service.ErrValidation, err)
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	c.JSON(status, gin.H{"data": payload})
}
