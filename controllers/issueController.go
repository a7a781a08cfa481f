package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"muniboard-be/access"
	"muniboard-be/analytics"
	"muniboard-be/lifecycle"
	"muniboard-be/middlewares"
	"muniboard-be/models"
	"muniboard-be/store"
)

type IssueController struct {
	Issues      store.IssueRepository
	Users       store.UserRepository
	Contractors store.ContractorRepository
	Data        *store.Store
}

// Create handles the creation of a new issue
func (h *IssueController) Create(c *gin.Context) {
	p := middlewares.Principal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if p.MunicipalityID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corporate accounts cannot report issues"})
		return
	}

	var input struct {
		Title       string  `json:"title" binding:"required,max=200"`
		Description string  `json:"description" binding:"required,max=1000"`
		CategoryID  int     `json:"category_id" binding:"required"`
		Location    string  `json:"location" binding:"required,max=200"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		ImageURL    *string `json:"image_url,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}
	if !data.CategoryExists(input.CategoryID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	issue := models.Issue{
		ReportedBy:     p.UserID,
		CategoryID:     input.CategoryID,
		MunicipalityID: *p.MunicipalityID,
		Title:          input.Title,
		Description:    input.Description,
		Location:       input.Location,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
	}
	lifecycle.Initialize(&issue, time.Now())
	if input.ImageURL != nil {
		issue.ImageURL = *input.ImageURL
	}

	if err := h.Issues.Create(c.Request.Context(), &issue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}
	if issue.ImageURL == "" {
		issue.ImageURL = fmt.Sprintf("https://picsum.photos/seed/report%d/800/600", issue.ID)
		if updated, err := h.Issues.Update(c.Request.Context(), issue); err == nil {
			issue = *updated
		}
	}

	c.JSON(http.StatusCreated, issue)
}

// List returns the role-scoped issue subset with optional status, category
// and search filters.
func (h *IssueController) List(c *gin.Context) {
	p := middlewares.Principal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	all, err := h.Issues.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	var issues []models.Issue
	switch p.Role {
	case models.RoleContractor:
		// Contractors see their assignments only.
		issues = []models.Issue{}
		for _, issue := range all {
			if issue.AssignedTo != nil && *issue.AssignedTo == p.UserID {
				issues = append(issues, issue)
			}
		}
	case models.RoleUser:
		// Citizens see their own reports.
		issues = []models.Issue{}
		for _, issue := range all {
			if issue.ReportedBy == p.UserID {
				issues = append(issues, issue)
			}
		}
	default:
		issues = access.VisibleIssues(p, all)
	}

	status := c.Query("status")
	category := c.Query("category")
	search := strings.ToLower(c.Query("search"))

	filtered := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if status != "" && status != "all" && string(issue.Status) != status {
			continue
		}
		if category != "" && category != "all" && strconv.Itoa(issue.CategoryID) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(issue.Title), search) &&
			!strings.Contains(strings.ToLower(issue.Description), search) &&
			!strings.Contains(strings.ToLower(issue.Location), search) {
			continue
		}
		filtered = append(filtered, issue)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	data, err := h.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}

	items := make([]gin.H, 0, len(filtered))
	for _, issue := range filtered {
		items = append(items, gin.H{
			"issue":        issue,
			"category":     data.CategoryName(issue.CategoryID),
			"municipality": data.MunicipalityName(issue.MunicipalityID),
			"reported_by":  data.Username(issue.ReportedBy),
			"assigned_to":  data.AssignedName(issue.AssignedTo),
		})
	}

	c.JSON(http.StatusOK, gin.H{"issues": items, "total": len(items)})
}

// Get returns an issue with resolved lookups and its stage timeline.
func (h *IssueController) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	issue, err := h.Issues.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrIssueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	data, err := h.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}

	stages := lifecycle.Timeline(*issue, time.Now())
	timeline := make([]gin.H, 0, len(stages))
	for _, stage := range stages {
		row := gin.H{
			"status":  stage.Status,
			"reached": stage.Reached,
			"ongoing": stage.Ongoing,
		}
		if stage.Reached {
			row["timestamp"] = stage.Timestamp
			row["duration"] = analytics.FormatDaysHours(time.Duration(stage.DurationSeconds * float64(time.Second)))
		}
		timeline = append(timeline, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"issue":        issue,
		"category":     data.CategoryName(issue.CategoryID),
		"municipality": data.MunicipalityName(issue.MunicipalityID),
		"reported_by":  data.Username(issue.ReportedBy),
		"assigned_to":  data.AssignedName(issue.AssignedTo),
		"timeline":     timeline,
	})
}

// scoped verifies the issue belongs to the principal's municipality.
func scoped(p *models.Principal, issue *models.Issue) bool {
	return p != nil && p.MunicipalityID != nil && issue.MunicipalityID == *p.MunicipalityID
}

// Update applies status transitions and priority edits within the
// principal's municipality.
func (h *IssueController) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Status   *string `json:"status,omitempty"`
		Priority *string `json:"priority,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Status == nil && input.Priority == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}

	issue, err := h.Issues.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrIssueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	if !scoped(middlewares.Principal(c), issue) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
		return
	}

	updated := *issue
	now := time.Now()

	if input.Priority != nil {
		priority := models.Priority(*input.Priority)
		if !priority.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		updated.Priority = priority
		updated.UpdatedAt = now
	}

	if input.Status != nil {
		updated, err = lifecycle.AppendStatus(updated, models.IssueStatus(*input.Status), now)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.Issues.Update(c.Request.Context(), updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Assign hands an issue to a contractor. The contractor must hold the
// Contractor role, have a contractor link, and belong to the issue's
// municipality.
func (h *IssueController) Assign(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.Issues.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrIssueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	if !scoped(middlewares.Principal(c), issue) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
		return
	}

	contractor, err := h.Users.Get(c.Request.Context(), input.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contractor not found"})
		return
	}

	data, err := h.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}
	if contractor.RoleID != data.RoleID(models.RoleContractor) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a contractor"})
		return
	}
	links, err := h.Contractors.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check contractor link"})
		return
	}
	linked := false
	for _, link := range links {
		if link.UserID == contractor.ID {
			linked = true
			break
		}
	}
	if !linked {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a contractor"})
		return
	}
	if contractor.MunicipalityID == nil || *contractor.MunicipalityID != issue.MunicipalityID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contractor belongs to a different municipality"})
		return
	}

	now := time.Now()
	updated := *issue
	updated.AssignedTo = &contractor.ID
	updated.UpdatedAt = now
	if next, err := lifecycle.AppendStatus(updated, models.Assigned, now); err == nil {
		updated = next
	}

	result, err := h.Issues.Update(c.Request.Context(), updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// MapPoints returns the most recent geocoded issues in the shape the map
// widget consumes.
func (h *IssueController) MapPoints(c *gin.Context) {
	const limit = 19

	all, err := h.Issues.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recent issues"})
		return
	}

	geocoded := make([]models.Issue, 0, len(all))
	for _, issue := range all {
		if issue.Latitude != 0 || issue.Longitude != 0 {
			geocoded = append(geocoded, issue)
		}
	}
	sort.SliceStable(geocoded, func(i, j int) bool {
		return geocoded[i].CreatedAt.After(geocoded[j].CreatedAt)
	})
	if len(geocoded) > limit {
		geocoded = geocoded[:limit]
	}

	type point struct {
		ID           int     `json:"id"`
		Latitude     float64 `json:"latitude"`
		Longitude    float64 `json:"longitude"`
		DisplayColor string  `json:"display_color"`
		Title        string  `json:"title"`
	}
	points := make([]point, 0, len(geocoded))
	for _, issue := range geocoded {
		points = append(points, point{
			ID:           issue.ID,
			Latitude:     issue.Latitude,
			Longitude:    issue.Longitude,
			DisplayColor: issue.StatusColor,
			Title:        issue.Title,
		})
	}

	c.JSON(http.StatusOK, points)
}
