package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"muniboard-be/access"
	"muniboard-be/middlewares"
	"muniboard-be/models"
	"muniboard-be/store"
)

type UserController struct {
	Users store.UserRepository
	Data  *store.Store
}

// List returns the users visible to the principal per the scope rules.
func (h *UserController) List(c *gin.Context) {
	p := middlewares.Principal(c)
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

	visible := access.VisibleUsers(p, users, data.Roles)
	items := make([]gin.H, 0, len(visible))
	for _, u := range visible {
		items = append(items, gin.H{
			"user_id":         u.ID,
			"username":        u.Username,
			"email":           u.Email,
			"role":            data.RoleName(u.RoleID),
			"municipality_id": u.MunicipalityID,
			"created_at":      u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": items, "total": len(items)})
}

// municipalityAdminManages limits a Municipality Admin to their own
// municipality's Managers and Contractors.
func municipalityAdminManages(data store.Dataset, p *models.Principal, u *models.User) bool {
	if p.MunicipalityID == nil || u.MunicipalityID == nil || *u.MunicipalityID != *p.MunicipalityID {
		return false
	}
	roleName := data.RoleName(u.RoleID)
	return roleName == models.RoleManager || roleName == models.RoleContractor
}

// validateRoleScope enforces the invariant that municipality is null only
// for corporate roles.
func validateRoleScope(data store.Dataset, roleID int, municipalityID *int) string {
	roleName := data.RoleName(roleID)
	if roleName == "Unknown" {
		return "Invalid role"
	}
	corporate := roleName == models.RoleSuperAdmin || roleName == models.RoleSystemAdmin
	if !corporate && municipalityID == nil {
		return "Municipality is required for this role"
	}
	return ""
}

// Create adds a user. Municipality Admins are limited to their own
// municipality's Managers and Contractors.
func (h *UserController) Create(c *gin.Context) {
	p := middlewares.Principal(c)

	var input struct {
		Username       string `json:"username" binding:"required,max=50"`
		Email          string `json:"email" binding:"required,email"`
		Password       string `json:"password" binding:"required,min=6"`
		RoleID         int    `json:"role_id"`
		MunicipalityID *int   `json:"municipality_id"`
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

	roleID := input.RoleID
	if roleID == 0 {
		roleID = data.RoleID(models.RoleUser)
	}
	municipalityID := input.MunicipalityID

	if p.Role == models.RoleMunicipalityAdmin {
		roleName := data.RoleName(roleID)
		if roleName != models.RoleManager && roleName != models.RoleContractor {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
			return
		}
		municipalityID = p.MunicipalityID
	}

	if msg := validateRoleScope(data, roleID, municipalityID); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	user := models.User{
		Username:       input.Username,
		Email:          input.Email,
		Password:       input.Password,
		RoleID:         roleID,
		MunicipalityID: municipalityID,
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":         user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"role":            data.RoleName(user.RoleID),
		"municipality_id": user.MunicipalityID,
	})
}

// Update edits a user record; an empty password keeps the existing hash.
func (h *UserController) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Username       *string `json:"username,omitempty"`
		Email          *string `json:"email,omitempty"`
		Password       *string `json:"password,omitempty"`
		RoleID         *int    `json:"role_id,omitempty"`
		MunicipalityID *int    `json:"municipality_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	data, err := h.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}

	if p := middlewares.Principal(c); p != nil && p.Role == models.RoleMunicipalityAdmin {
		if !municipalityAdminManages(data, p, user) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
			return
		}
		if input.RoleID != nil {
			roleName := data.RoleName(*input.RoleID)
			if roleName != models.RoleManager && roleName != models.RoleContractor {
				c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
				return
			}
		}
		if input.MunicipalityID != nil && *input.MunicipalityID != *p.MunicipalityID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
			return
		}
	}

	updated := *user
	if input.Username != nil {
		updated.Username = *input.Username
	}
	if input.Email != nil {
		updated.Email = *input.Email
	}
	if input.RoleID != nil {
		updated.RoleID = *input.RoleID
	}
	if input.MunicipalityID != nil {
		updated.MunicipalityID = input.MunicipalityID
	}
	if input.Password != nil && *input.Password != "" {
		updated.Password = *input.Password
		if err := updated.HashPassword(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
	}

	if msg := validateRoleScope(data, updated.RoleID, updated.MunicipalityID); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	result, err := h.Users.Update(c.Request.Context(), updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":         result.ID,
		"username":        result.Username,
		"email":           result.Email,
		"role":            data.RoleName(result.RoleID),
		"municipality_id": result.MunicipalityID,
	})
}

// Delete removes the user record only. Issues that reference the user keep
// their stale ids; lookups degrade to Unknown/Unassigned.
func (h *UserController) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if p := middlewares.Principal(c); p != nil && p.Role == models.RoleMunicipalityAdmin {
		user, err := h.Users.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		data, err := h.Data.Snapshot()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
			return
		}
		if !municipalityAdminManages(data, p, user) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/"})
			return
		}
	}

	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
