// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint: the error
// envelope, fail(), the service-error mapping, and the small success
// writers. Streamed chat replies are the one exception to the JSON shape and
// only use these helpers before the first byte is sent.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-advisor-coach/internal/http/middleware"
	"github.com/tbourn/go-advisor-coach/internal/llm"
	"github.com/tbourn/go-advisor-coach/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message
	Message string `json:"message" example:"persona not found"`
	// Provider status and type for upstream_error, the cause for
	// client_init_failed
	Details any `json:"details,omitempty" swaggertype:"object"`
}

// fail aborts the request with a structured error. 5xx responses are logged
// with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	failWithDetails(c, status, code, msg, nil)
}

func failWithDetails(c *gin.Context, status int, code, msg string, details any) {
	resp := ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
		Details:   details,
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

// Fail is the exported variant of fail() for the router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// UpstreamDetails is the details object of an upstream_error response.
type UpstreamDetails struct {
	Status int    `json:"status,omitempty" example:"429"`
	Type   string `json:"type,omitempty" example:"requests"`
}

// failService maps a service or provider error to the response:
//
//	services.ErrInvalidInput family   → 400 bad_request
//	ErrPersonaNotFound/SessionNotFound → 404 not_found
//	llm.ErrMissingCredential          → 500 configuration_error
//	llm.ErrClientInit                 → 500 client_init_failed
//	*llm.UpstreamError                → 500 upstream_error
//	*llm.MalformedError               → 500 malformed_response
//	anything else                     → 500 fallback
func failService(c *gin.Context, err error, fallback string) {
	var (
		ue *llm.UpstreamError
		me *llm.MalformedError
	)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrPersonaNotFound), errors.Is(err, services.ErrSessionNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, llm.ErrMissingCredential):
		fail(c, http.StatusInternalServerError, ErrCodeConfiguration, err.Error())
	case errors.Is(err, llm.ErrClientInit):
		failWithDetails(c, http.StatusInternalServerError, ErrCodeClientInit,
			"completion client failed to initialize", err.Error())
	case errors.As(err, &ue):
		var details any
		if ue.StatusCode > 0 || ue.Type != "" {
			details = UpstreamDetails{Status: ue.StatusCode, Type: ue.Type}
		}
		middleware.LoggerFrom(c).Warn().Str("detail", ue.Detail).Msg("upstream failure")
		failWithDetails(c, http.StatusInternalServerError, ErrCodeUpstream, ue.Message, details)
	case errors.As(err, &me):
		middleware.LoggerFrom(c).Warn().Int("raw_len", len(me.Raw)).Msg("unusable completion")
		fail(c, http.StatusInternalServerError, ErrCodeMalformed, "the model returned an unusable response")
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(499)
	default:
		fail(c, http.StatusInternalServerError, fallback, err.Error())
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
