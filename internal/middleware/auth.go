package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prodtrack/internal/models"
	"prodtrack/internal/tracking"
)

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetActor(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    40100,
				"message": "authentication required",
			})
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    40100,
				"message": "authentication required",
			})
			return
		}
		if err := tracking.RequireRole(actor, roles...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    40300,
				"message": err.Error(),
			})
			return
		}
		c.Next()
	}
}
