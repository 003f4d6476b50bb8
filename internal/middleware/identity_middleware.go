package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// Authenticator attaches the caller identity for a bearer credential.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) context.Context
}

// IdentityMiddleware resolves the bearer credential once per request. It never
// aborts: operations that need an identity reject on their own.
func IdentityMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractBearer(c); token != "" {
			c.Request = c.Request.WithContext(auth.Authenticate(c.Request.Context(), token))
		}
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
