package handlers

import (
	"database/sql"
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"music-service/internal/repositories"
	"music-service/internal/services"
)

type AuthHandler struct {
	users repositories.UserRepository
	auth  *services.AuthService
}

func NewAuthHandler(users repositories.UserRepository, auth *services.AuthService) *AuthHandler {
	return &AuthHandler{users: users, auth: auth}
}

type registerBody struct {
	Nick     string `json:"nick"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Nick == "" || body.Email == "" || body.Password == "" {
		c.JSON(nethttp.StatusBadRequest, gin.H{
			"success": false,
			"errors":  gin.H{"general": "all fields are required"},
		})
		return
	}

	ctx := c.Request.Context()
	fieldErrors := gin.H{}

	nickTaken, err := h.users.NickTaken(ctx, body.Nick, 0)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	if nickTaken {
		fieldErrors["nick"] = "nick is already taken"
	}

	emailTaken, err := h.users.EmailTaken(ctx, body.Email)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	if emailTaken {
		fieldErrors["email"] = "email is already registered"
	}

	if len(fieldErrors) > 0 {
		c.JSON(nethttp.StatusBadRequest, gin.H{"success": false, "errors": fieldErrors})
		return
	}

	// the very first account becomes the administrator
	count, err := h.users.Count(ctx)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	makeAdmin := count == 0

	hash, err := h.auth.HashPassword(body.Password)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	user, err := h.users.Create(ctx, body.Nick, body.Email, hash, makeAdmin)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    user.ID,
			"nick":  user.Nick,
			"email": user.Email,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"success": false, "error": "invalid credentials payload"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), body.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusUnauthorized, gin.H{"success": false, "error": "invalid email or password"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if !h.auth.CheckPassword(user.PasswordHash, body.Password) {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"success": false, "error": "invalid email or password"})
		return
	}

	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"success":    true,
		"token":      token,
		"expires_in": int64(h.auth.TokenTTL().Seconds()),
		"user": gin.H{
			"id":                 user.ID,
			"nick":               user.Nick,
			"email":              user.Email,
			"is_admin":           user.IsAdmin,
			"profile_image_path": user.ProfileImagePath,
		},
	})
}
