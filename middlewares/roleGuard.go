package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"muniboard-be/models"
)

// Principal pulls the restored principal out of the request context.
func Principal(c *gin.Context) *models.Principal {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil
	}
	p, ok := v.(*models.Principal)
	if !ok {
		return nil
	}
	return p
}

// RequireRoles denies the request unless the principal holds one of the
// given roles. Denials carry the safe default view the client should land on.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal(c)
		if p != nil {
			for _, role := range roles {
				if p.Role == role {
					c.Next()
					return
				}
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
		c.Abort()
	}
}
