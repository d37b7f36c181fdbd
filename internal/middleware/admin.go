package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// SuperuserOnly restricts a route group to superusers
func SuperuserOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c) // Get user from context
		// Check if a user is logged in
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Check if user is a superuser
		if !user.IsSuperuser {
			// If not, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If superuser, proceed to the next handler
		c.Next()
	}
}
