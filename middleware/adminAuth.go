package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware authenticates a user token and additionally requires
// the admin role claim.
func JWTAuthAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := identityFromRequest(c)
		if !ok {
			return
		}
		if role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized admin access"})
			return
		}
		c.Set("userID", userID)
		c.Set("isAdmin", true)
		c.Next()
	}
}
