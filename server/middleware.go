package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// contextKeyUID is the gin context key the middleware stores the
// authenticated identity under.
const contextKeyUID = "uid"

// AuthMiddleware validates the bearer token and injects the uid. The
// websocket endpoint cannot set headers from the browser, so a ?token=
// query parameter is accepted as a fallback.
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
			if tokenString == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
				c.Abort()
				return
			}
		}

		claims, err := jwtService.Validate(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(contextKeyUID, claims.UID)
		c.Next()
	}
}
