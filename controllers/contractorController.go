package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"muniboard-be/middlewares"
	"muniboard-be/models"
	"muniboard-be/store"
)

type ContractorController struct {
	Users       store.UserRepository
	Contractors store.ContractorRepository
	Data        *store.Store
}

// List returns the principal's municipality's contractors: users holding the
// Contractor role with a contractor link.
func (h *ContractorController) List(c *gin.Context) {
	p := middlewares.Principal(c)
	if p == nil || p.MunicipalityID == nil {
		c.JSON(http.StatusOK, gin.H{"contractors": []gin.H{}, "total": 0})
		return
	}

	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contractors"})
		return
	}
	links, err := h.Contractors.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contractors"})
		return
	}
	data, err := h.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}

	linked := make(map[int]bool, len(links))
	for _, link := range links {
		linked[link.UserID] = true
	}
	contractorRoleID := data.RoleID(models.RoleContractor)

	items := make([]gin.H, 0)
	for _, u := range users {
		if u.RoleID != contractorRoleID || !linked[u.ID] {
			continue
		}
		if u.MunicipalityID == nil || *u.MunicipalityID != *p.MunicipalityID {
			continue
		}
		items = append(items, gin.H{
			"user_id":         u.ID,
			"username":        u.Username,
			"email":           u.Email,
			"municipality_id": u.MunicipalityID,
			"created_at":      u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"contractors": items, "total": len(items)})
}

// Create adds a contractor in the principal's municipality: a user with the
// Contractor role plus the link row.
func (h *ContractorController) Create(c *gin.Context) {
	p := middlewares.Principal(c)
	if p == nil || p.MunicipalityID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
		return
	}

	var input struct {
		Username string `json:"username" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
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

	user := models.User{
		Username:       input.Username,
		Email:          input.Email,
		Password:       input.Password,
		RoleID:         data.RoleID(models.RoleContractor),
		MunicipalityID: p.MunicipalityID,
		CorporationID:  p.CorporationID,
		CreatedAt:      time.Now(),
	}
	if err := user.HashPassword(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if err := h.Users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contractor"})
		return
	}

	link, err := h.Contractors.Link(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contractor"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"contractor_id":   link.ID,
		"user_id":         user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"municipality_id": user.MunicipalityID,
	})
}

// scopedContractor resolves the :id route param to a contractor the
// principal may manage: Contractor role, link row, same municipality.
// Writes the error response and returns false otherwise.
func (h *ContractorController) scopedContractor(c *gin.Context) (*models.User, bool) {
	p := middlewares.Principal(c)
	if p == nil || p.MunicipalityID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
		return nil, false
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return nil, false
	}

	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
		return nil, false
	}
	data, err := h.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return nil, false
	}
	if user.RoleID != data.RoleID(models.RoleContractor) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
		return nil, false
	}
	links, err := h.Contractors.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contractors"})
		return nil, false
	}
	linked := false
	for _, link := range links {
		if link.UserID == user.ID {
			linked = true
			break
		}
	}
	if !linked {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
		return nil, false
	}
	if user.MunicipalityID == nil || *user.MunicipalityID != *p.MunicipalityID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
		return nil, false
	}
	return user, true
}

// Update edits a contractor's user record within the principal's
// municipality.
func (h *ContractorController) Update(c *gin.Context) {
	user, ok := h.scopedContractor(c)
	if !ok {
		return
	}

	var input struct {
		Username *string `json:"username,omitempty"`
		Email    *string `json:"email,omitempty"`
		Password *string `json:"password,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := *user
	if input.Username != nil {
		updated.Username = *input.Username
	}
	if input.Email != nil {
		updated.Email = *input.Email
	}
	if input.Password != nil && *input.Password != "" {
		updated.Password = *input.Password
		if err := updated.HashPassword(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
	}

	result, err := h.Users.Update(c.Request.Context(), updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contractor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":         result.ID,
		"username":        result.Username,
		"email":           result.Email,
		"municipality_id": result.MunicipalityID,
	})
}

// Delete removes the contractor's user record and the link row. Issues
// already assigned to the contractor keep their stale assignment and render
// as Unassigned.
func (h *ContractorController) Delete(c *gin.Context) {
	user, ok := h.scopedContractor(c)
	if !ok {
		return
	}

	if err := h.Users.Delete(c.Request.Context(), user.ID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contractor"})
		return
	}
	if err := h.Contractors.Unlink(c.Request.Context(), user.ID); err != nil && !errors.Is(err, store.ErrLinkNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contractor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contractor deleted successfully"})
}
