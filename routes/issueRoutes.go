package routes

import (
	"github.com/gin-gonic/gin"

	"muniboard-be/controllers"
	"muniboard-be/middlewares"
	"muniboard-be/models"
)

// IssueRoutes sets up the issue routes. Status, priority and assignment
// changes are reserved for municipality staff.
func IssueRoutes(r *gin.Engine, issues *controllers.IssueController, authMW, rateMW gin.HandlerFunc) {
	group := r.Group("/api/issues")
	group.Use(authMW)
	{
		group.POST("", rateMW, issues.Create)
		group.GET("", issues.List)
		group.GET("/map", issues.MapPoints)
		group.GET("/:id", issues.Get)

		staff := middlewares.RequireRoles(models.RoleMunicipalityAdmin, models.RoleManager)
		group.PATCH("/:id", staff, issues.Update)
		group.POST("/:id/assign", staff, issues.Assign)
	}
}
