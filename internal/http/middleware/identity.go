package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the caller identity until real authentication sits in
// front of the service.
const HeaderUserID = "X-User-ID"

// DefaultUserID owns requests that name no user.
const DefaultUserID = "demo-user"

// maxUserIDLen matches the personas.user_id column width.
const maxUserIDLen = 64

// UserID returns the caller identity: the "userID" context value set by an
// auth layer, then the X-User-ID header, then DefaultUserID. Over-long
// header values are ignored.
func UserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader(HeaderUserID)); h != "" && len(h) <= maxUserIDLen {
			return h
		}
	}
	return DefaultUserID
}
