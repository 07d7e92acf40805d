// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints:
// the structured error envelope, success helpers, and the translation of
// service-level errors into HTTP results. Keeping the translation in one
// place guarantees that e.g. a paused queue always surfaces as the same
// status and code, no matter which endpoint hit it.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "queue_paused",
//	  "message": "queue is currently paused"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediqueue/go-queue-backend/internal/http/middleware"
	"github.com/mediqueue/go-queue-backend/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"queue_paused"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"queue is currently paused"`
}

// PageResponse is the standard pagination envelope for list endpoints.
type PageResponse struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failService translates a service-layer error into the matching HTTP status
// and stable code. Unknown errors become 500/internal_error.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDepartmentNotFound),
		errors.Is(err, services.ErrQueueNotFound),
		errors.Is(err, services.ErrCounterNotFound),
		errors.Is(err, services.ErrTokenNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrQueuePaused):
		fail(c, http.StatusConflict, ErrCodeQueuePaused, err.Error())
	case errors.Is(err, services.ErrInactiveDepartment):
		fail(c, http.StatusConflict, ErrCodeDepartmentInactive, err.Error())
	case errors.Is(err, services.ErrNoActiveCounter):
		fail(c, http.StatusConflict, ErrCodeNoActiveCounter, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		fail(c, http.StatusForbidden, ErrCodePermissionDenied, err.Error())
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrCodeTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrEmptyPatientName),
		errors.Is(err, services.ErrInvalidDepartmentCode),
		errors.Is(err, services.ErrCounterMismatch):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// ok writes a success JSON response with the given status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
