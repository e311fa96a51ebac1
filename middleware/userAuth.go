package middleware

import (
	"net/http"
	"strings"

	"academix/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthUserMiddleware authenticates any signed-in user and stores the
// caller's id in the gin context under "userID".
func JWTAuthUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, ok := identityFromRequest(c)
		if !ok {
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

func identityFromRequest(c *gin.Context) (string, string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Insufficient authorization",
			"code":  0,
		})
		return "", "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	userID, role, err := utils.ExtractIdentityFromToken(tokenString)
	if err != nil || userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Insufficient authorization",
			"code":  0,
		})
		return "", "", false
	}
	return userID, role, true
}
