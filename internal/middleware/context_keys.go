package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the acting user's ID in the request
// context. Using a custom type prevents collisions.
const userIDKey = contextKey("userID")

// UserScopeMiddleware resolves the acting user from the X-User-ID header and
// stores it in the request context. Authentication proper is out of scope;
// the engine only needs a stable per-user scope for the current-hawl
// singleton.
func UserScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), userIDKey, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal := c.Request.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
