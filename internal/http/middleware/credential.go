package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-advisor-coach/internal/llm"
)

// RequireCredential rejects requests to provider-backed routes before any
// work is done when check reports the completion client unusable.
//
//	llm.ErrMissingCredential → 500 configuration_error
//	llm.ErrClientInit        → 500 client_init_failed
//
// Any other error is treated as a configuration problem. A nil check
// disables the guard.
func RequireCredential(check func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check == nil {
			c.Next()
			return
		}
		err := check()
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, llm.ErrClientInit):
			LoggerFrom(c).Error().Err(err).Msg("completion client unavailable")
			abortJSON(c, http.StatusInternalServerError, "client_init_failed", "completion client failed to initialize")
		default:
			LoggerFrom(c).Error().Err(err).Msg("completion client not configured")
			abortJSON(c, http.StatusInternalServerError, "configuration_error", err.Error())
		}
	}
}
