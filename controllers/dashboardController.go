package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"muniboard-be/access"
	"muniboard-be/analytics"
	"muniboard-be/middlewares"
	"muniboard-be/models"
	"muniboard-be/store"
)

type DashboardController struct {
	Issues store.IssueRepository
	Users  store.UserRepository
	Data   *store.Store
}

// Municipality returns the analytics for the principal's municipality.
func (h *DashboardController) Municipality(c *gin.Context) {
	p := middlewares.Principal(c)
	if p == nil || p.MunicipalityID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
		return
	}

	all, err := h.Issues.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	data, err := h.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}

	issues := access.VisibleIssues(p, all)

	contractorRoleID := data.RoleID(models.RoleContractor)
	contractors := make([]models.User, 0)
	for _, u := range users {
		if u.RoleID == contractorRoleID && u.MunicipalityID != nil && *u.MunicipalityID == *p.MunicipalityID {
			contractors = append(contractors, u)
		}
	}

	summary := analytics.Summarize(issues, data.Categories, contractors)

	c.JSON(http.StatusOK, gin.H{
		"municipality":        data.MunicipalityName(*p.MunicipalityID),
		"total":               summary.Total,
		"resolved":            summary.ByStatus[string(models.Resolved)],
		"pending":             summary.ByStatus[string(models.Pending)],
		"by_status":           summary.ByStatus,
		"by_category":         summary.ByCategory,
		"by_contractor":       summary.ByContractor,
		"avg_resolution_time": summary.AvgResolution,
	})
}

// Corporate returns the high-level overview across all municipalities.
func (h *DashboardController) Corporate(c *gin.Context) {
	all, err := h.Issues.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	data, err := h.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}

	summary := analytics.Summarize(all, data.Categories, nil)
	open := analytics.OpenCount(all)

	c.JSON(http.StatusOK, gin.H{
		"total":               summary.Total,
		"resolved":            summary.Total - open,
		"pending":             open,
		"by_status":           summary.ByStatus,
		"by_category":         summary.ByCategory,
		"by_municipality":     analytics.ByMunicipality(all, data.Municipalities),
		"last_7_days":         analytics.Last7Days(all, time.Now()),
		"avg_resolution_time": summary.AvgResolution,
	})
}
