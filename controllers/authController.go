package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"muniboard-be/config"
	"muniboard-be/middlewares"
	"muniboard-be/models"
	"muniboard-be/session"
	"muniboard-be/store"
	authUtils "muniboard-be/utils"
)

// Citizen self-registration defaults, matching the seeded dataset.
const (
	defaultMunicipalityID = 1
	defaultCorporationID  = 1
)

type AuthController struct {
	Users    store.UserRepository
	Data     *store.Store
	Sessions session.Store
	Cfg      config.Config
}

// Register handles citizen self-registration
func (a *AuthController) Register(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := a.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}

	municipalityID := defaultMunicipalityID
	user := models.User{
		Username:       input.Username,
		Email:          input.Email,
		Password:       input.Password,
		RoleID:         data.RoleID(models.RoleUser),
		MunicipalityID: &municipalityID,
		CorporationID:  defaultCorporationID,
		CreatedAt:      time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if err := a.Users.Create(c.Request.Context(), &user); err != nil {
		if err == store.ErrEmailTaken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
			return
		}
		log.Println("Error creating user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":   user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"createdAt": user.CreatedAt,
	})
}

// Login verifies credentials, stores the principal in the session store and
// sets the auth cookie.
func (a *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := a.Users.GetByEmail(c.Request.Context(), input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	data, err := a.Data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dataset is still loading"})
		return
	}

	principal := models.Principal{
		UserID:         user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           data.RoleName(user.RoleID),
		MunicipalityID: user.MunicipalityID,
		CorporationID:  user.CorporationID,
	}

	if err := a.Sessions.Set(c.Request.Context(), strconv.Itoa(user.ID), principal); err != nil {
		log.Println("Error storing session:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	token, err := authUtils.GenerateToken(a.Cfg.JWTSecret, user.ID)
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	domain := ""
	if a.Cfg.Env != "production" {
		domain = "localhost"
	}

	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		MaxAge:   int(session.TTL.Seconds()),
		Path:     "/",
		Domain:   domain,
		Secure:   a.Cfg.Env == "production",
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(c.Writer, cookie)

	c.JSON(http.StatusOK, gin.H{
		"user_id":         user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"role":            principal.Role,
		"municipality_id": user.MunicipalityID,
		"token":           token,
	})
}

// GetMe returns the restored principal for the current session.
func (a *AuthController) GetMe(c *gin.Context) {
	p := middlewares.Principal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Logout clears the session record and the auth_token cookie.
func (a *AuthController) Logout(c *gin.Context) {
	if p := middlewares.Principal(c); p != nil {
		if err := a.Sessions.Clear(c.Request.Context(), strconv.Itoa(p.UserID)); err != nil {
			log.Println("Error clearing session:", err)
		}
	}
	c.SetCookie("auth_token", "", -1, "/", "", a.Cfg.Env == "production", true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
