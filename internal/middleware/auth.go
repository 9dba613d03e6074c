package middleware

import (
	"strings"

	"github.com/chandankhang/CompTrack/internal/constants"
	apierrors "github.com/chandankhang/CompTrack/internal/errors"
	"github.com/chandankhang/CompTrack/internal/models"
	"github.com/chandankhang/CompTrack/internal/token"
	"github.com/gin-gonic/gin"
)

// RequireAuth verifies the bearer token and stores the caller's identity and
// role in the request context.
func RequireAuth(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthorized(c, "No token provided, authorization denied")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apierrors.Unauthorized(c, "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyUserRole, claims.Role)
		c.Next()
	}
}

// RequireRoles allows the request through only when the caller holds one of
// the given roles. Must run after RequireAuth.
func RequireRoles(allowed ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}

		for _, r := range allowed {
			if r == role {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Unauthorized access")
		c.Abort()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	id, ok := v.(uint64)
	return id, ok
}

// GetUserRole retrieves the current user role from context
func GetUserRole(c *gin.Context) (models.UserRole, bool) {
	v, exists := c.Get(constants.ContextKeyUserRole)
	if !exists {
		return "", false
	}

	role, ok := v.(models.UserRole)
	return role, ok
}
