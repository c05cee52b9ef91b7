// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the correlation ID injector, panic recovery, and access
// to the request-scoped logger:
//
//   - RequestID() reuses or generates X-Request-ID and stores it in the Gin
//     context.
//   - Recovery() turns panics into the JSON error envelope. A panic with
//     http.ErrAbortHandler is re-raised so net/http drops the connection;
//     that is how the chat handler aborts a reply that has already started
//     streaming.
//   - LoggerFrom() returns the logger attached by RedactingLogger, or the
//     global logger when none is attached.
//
// Order: RequestID → RedactingLogger → Recovery, so panics are logged with
// the correlation ID.
package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	// maxRequestIDLen bounds client-supplied correlation ids.
	maxRequestIDLen = 128
)

// RequestID attaches a correlation identifier to every request. A client
// supplied X-Request-ID is reused when it is short enough; otherwise a UUIDv4
// is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Recovery converts panics into a 500 envelope with code internal_error.
// When the response has already started only the status is recorded.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				LoggerFrom(c).Warn().Msg("response aborted")
				panic(rec)
			}

			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger. Callers never get nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Str("request_id", RequestIDFrom(c)).Logger()
	return &l
}

// RequestIDFrom returns the correlation id assigned by RequestID.
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return c.Writer.Header().Get(requestIDHeader)
}

// abortJSON writes the shared error envelope and stops the chain.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": RequestIDFrom(c),
		"code":       code,
		"message":    msg,
	})
}

// truncate cuts s to n bytes and marks the cut. n <= 0 disables truncation.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
