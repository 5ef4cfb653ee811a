package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/portalauth/internal/account/domain"
	sessiondomain "github.com/smallbiznis/portalauth/internal/session/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrUnauthorized = errors.New("unauthorized")

// ErrorHandlingMiddleware maps domain errors to HTTP responses after the
// handler chain has run.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, sessiondomain.ErrInvalidRequest),
		errors.Is(err, accountdomain.ErrInvalidID):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid request",
		}

	// An expired session authorizes nothing, exactly like an unknown one.
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, sessiondomain.ErrSessionNotFound),
		errors.Is(err, sessiondomain.ErrSessionExpired),
		errors.Is(err, sessiondomain.ErrNoActiveSession):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}

	case errors.Is(err, accountdomain.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}

	case errors.Is(err, sessiondomain.ErrSessionAlreadyActive):
		return http.StatusConflict, errorPayload{
			Type:    "session_already_active",
			Message: "sign out of the existing session first",
		}

	case errors.Is(err, sessiondomain.ErrAccountInactive),
		errors.Is(err, sessiondomain.ErrAccountEmailMismatch):
		return http.StatusForbidden, errorPayload{
			Type:    err.Error(),
			Message: "forbidden",
		}

	// Storage failures surface without internal detail; the log line
	// carries the context.
	case errors.Is(err, sessiondomain.ErrStorageUnavailable),
		errors.Is(err, accountdomain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}

	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
