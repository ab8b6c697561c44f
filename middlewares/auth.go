package middlewares

import (
	"net/http"
	"strings"

	"boutique-service/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware gates admin routes behind a bearer token issued at
// login. On success the admin id and username land in the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
			return
		}

		adminID, username, err := utils.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
			return
		}

		c.Set("adminID", adminID)
		c.Set("adminUsername", username)
		c.Next()
	}
}
