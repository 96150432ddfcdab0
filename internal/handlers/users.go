package handlers

import (
	"database/sql"
	"errors"
	nethttp "net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"music-service/internal/repositories"
)

var nickPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type UserHandler struct {
	users repositories.UserRepository
}

func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Profile(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), *userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user does not exist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true, "user": user})
}

type changeNickBody struct {
	NewNick string `json:"new_nick" binding:"required"`
}

func (h *UserHandler) ChangeNick(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body changeNickBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "new nick is required"})
		return
	}

	if len(body.NewNick) < 3 || len(body.NewNick) > 30 {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "nick must be between 3 and 30 characters"})
		return
	}
	if !nickPattern.MatchString(body.NewNick) {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "nick may only contain letters, digits, underscores and dashes"})
		return
	}

	ctx := c.Request.Context()
	taken, err := h.users.NickTaken(ctx, body.NewNick, *userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to change nick"})
		return
	}
	if taken {
		c.JSON(nethttp.StatusConflict, gin.H{"error": "nick is already taken"})
		return
	}

	user, err := h.users.GetByID(ctx, *userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user does not exist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to change nick"})
		return
	}

	if err := h.users.UpdateNick(ctx, *userID, body.NewNick); err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to change nick"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"success":  true,
		"old_nick": user.Nick,
		"new_nick": body.NewNick,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	if !h.callerIsAdmin(c, *userID) {
		return
	}

	users, err := h.users.List(ctx)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true, "users": users})
}

type toggleAdminBody struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

func (h *UserHandler) ToggleAdmin(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var body toggleAdminBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "is_admin is required"})
		return
	}

	if !h.callerIsAdmin(c, *userID) {
		return
	}

	if targetID == *userID {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "cannot change your own admin status"})
		return
	}

	if err := h.users.SetAdmin(c.Request.Context(), targetID, *body.IsAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user does not exist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to update admin status"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) Delete(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if !h.callerIsAdmin(c, *userID) {
		return
	}

	if targetID == *userID {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	ctx := c.Request.Context()
	target, err := h.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user does not exist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	if err := h.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user does not exist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"success": true,
		"message": "user \"" + target.Nick + "\" deleted",
	})
}

// callerIsAdmin writes the error response itself when the check fails.
func (h *UserHandler) callerIsAdmin(c *gin.Context, userID int64) bool {
	caller, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to verify permissions"})
		return false
	}
	if !caller.IsAdmin {
		c.JSON(nethttp.StatusForbidden, gin.H{"error": "administrator access required"})
		return false
	}
	return true
}
