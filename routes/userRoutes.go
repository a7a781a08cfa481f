package routes

import (
	"github.com/gin-gonic/gin"

	"muniboard-be/controllers"
	"muniboard-be/middlewares"
	"muniboard-be/models"
)

// UserRoutes sets up user and contractor management routes.
func UserRoutes(r *gin.Engine, users *controllers.UserController, contractors *controllers.ContractorController, authMW gin.HandlerFunc) {
	admins := middlewares.RequireRoles(models.RoleSuperAdmin, models.RoleSystemAdmin, models.RoleMunicipalityAdmin)
	userGroup := r.Group("/api/users")
	userGroup.Use(authMW, admins)
	{
		userGroup.GET("", users.List)
		userGroup.POST("", users.Create)
		userGroup.PUT("/:id", users.Update)
		userGroup.DELETE("/:id", users.Delete)
	}

	staff := middlewares.RequireRoles(models.RoleMunicipalityAdmin, models.RoleManager)
	contractorGroup := r.Group("/api/contractors")
	contractorGroup.Use(authMW, staff)
	{
		contractorGroup.GET("", contractors.List)
		contractorGroup.POST("", contractors.Create)
		contractorGroup.PUT("/:id", contractors.Update)
		contractorGroup.DELETE("/:id", contractors.Delete)
	}
}
