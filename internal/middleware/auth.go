package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/luminpress/core/internal/pkg/response"
)

// ContextKeyAdmin marks a request as authenticated admin.
const ContextKeyAdmin = "is_admin"

// Auth enforces the configured bearer API token on admin routes.
// An empty configured token disables all admin endpoints.
func Auth(apiToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiToken == "" || !tokenMatches(apiToken, extractToken(c)) {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyAdmin, true)
		c.Next()
	}
}

// OptionalAuth marks the request as admin if a valid token is present,
// but never blocks.
func OptionalAuth(apiToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiToken != "" && tokenMatches(apiToken, extractToken(c)) {
			c.Set(ContextKeyAdmin, true)
		}
		c.Next()
	}
}

// IsAdmin reports whether the current request carries a valid admin token.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextKeyAdmin)
}

func tokenMatches(want, got string) bool {
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token != "" {
			return token
		}
	}
	return strings.TrimSpace(c.Query("token"))
}
