// Package middleware holds the Gin middleware shared by the HTTP layer:
// correlation IDs, structured logging with PII scrubbing, panic recovery,
// Prometheus instrumentation, JWT authentication, idempotency handling,
// per-identity rate limiting, and security headers.
//
// Recommended order (the router follows it):
//  1. RequestID
//  2. RedactingLogger
//  3. Recovery
// so that panics and errors are logged with the correlation ID attached.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// ctxKeyRequestID is the Gin context key holding the correlation ID.
	ctxKeyRequestID = "requestID"
	// HeaderRequestID propagates the correlation ID to and from clients.
	HeaderRequestID = "X-Request-ID"
	// maxQueryLogLen caps how much of the raw query string reaches the logs.
	maxQueryLogLen = 2048
)

// RequestID reuses the incoming X-Request-ID when present, otherwise mints a
// UUIDv4. The ID is stored in the Gin context and echoed on the response so
// clients and logs can be correlated. Install it before any logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation ID set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	v, _ := c.Get(ctxKeyRequestID)
	s, _ := v.(string)
	return s
}

// Logger emits one structured access log line per request and attaches a
// request-scoped zerolog.Logger to the Gin context (key "logger"). Level is
// chosen by outcome: error for 5xx or collected Gin errors, warn for 4xx,
// info otherwise.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path // unmatched route
		}

		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("user_id", c.GetString(ctxKeyUserID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLen)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()
		c.Set("logger", &l)

		c.Next()

		lg := l.With().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch {
		case len(c.Errors) > 0:
			lg.Error().Str("errors", c.Errors.String()).Msg("request")
		case c.Writer.Status() >= 500:
			lg.Error().Msg("request")
		case c.Writer.Status() >= 400:
			lg.Warn().Msg("request")
		default:
			lg.Info().Msg("request")
		}
	}
}

// Recovery converts panics into a JSON 500 carrying the correlation ID, and
// logs the panic value with a stack trace. Nothing is written if a response
// already went out.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid := RequestIDFrom(c)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", rid).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.Header(HeaderRequestID, rid)
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": rid,
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by Logger or
// RedactingLogger; without one it falls back to the global logger, so the
// result is always usable.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get("logger"); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// truncate caps s at max bytes, appending an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
