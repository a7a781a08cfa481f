package routes

import (
	"github.com/gin-gonic/gin"

	"muniboard-be/controllers"
	"muniboard-be/middlewares"
	"muniboard-be/models"
)

// DashboardRoutes sets up the analytics routes.
func DashboardRoutes(r *gin.Engine, dashboard *controllers.DashboardController, authMW gin.HandlerFunc) {
	group := r.Group("/api/dashboard")
	group.Use(authMW)
	{
		group.GET("/municipality",
			middlewares.RequireRoles(models.RoleMunicipalityAdmin, models.RoleManager),
			dashboard.Municipality)
		group.GET("/corporate",
			middlewares.RequireRoles(models.RoleSuperAdmin, models.RoleSystemAdmin),
			dashboard.Corporate)
	}
}
