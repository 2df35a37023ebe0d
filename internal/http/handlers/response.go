// Package handlers implements the HTTP endpoints of the public API.
//
// This file holds the response helpers shared by every endpoint. All errors
// leave the API in the same envelope so clients can branch on a stable code
// instead of parsing messages:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "application not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/applicationtrack/applicationtrack-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints. RequestID
// echoes X-Request-ID so a client error can be matched to server logs; Code is
// one of the constants in errors.go.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"application not found"`
}

// fail aborts the request with a structured error. Server-side failures
// (>= 500) are additionally logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail, for use by router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent answers 204.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
