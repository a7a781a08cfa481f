package routes

import (
	"github.com/gin-gonic/gin"

	"muniboard-be/controllers"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, auth *controllers.AuthController, authMW gin.HandlerFunc) {
	group := r.Group("/api/auth")
	{
		group.POST("/register", auth.Register)
		group.POST("/login", auth.Login)
		group.GET("/me", authMW, auth.GetMe)
		group.POST("/logout", authMW, auth.Logout)
	}
}
