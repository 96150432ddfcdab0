package handlers

import (
	"database/sql"
	"errors"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"music-service/internal/models"
	"music-service/internal/repositories"
)

type FavoriteHandler struct {
	favorites repositories.FavoriteRepository
	songs     repositories.SongRepository
}

func NewFavoriteHandler(favorites repositories.FavoriteRepository, songs repositories.SongRepository) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, songs: songs}
}

func (h *FavoriteHandler) List(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	favorites, err := h.favorites.ListForUser(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch favorites"})
		return
	}
	if favorites == nil {
		favorites = []models.FavoriteSong{}
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true, "favorites": favorites})
}

type favoriteBody struct {
	SongID int64 `json:"song_id" binding:"required"`
}

func (h *FavoriteHandler) Add(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body favoriteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "song_id is required"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.songs.GetByID(ctx, body.SongID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "song not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch song"})
		return
	}

	if err := h.favorites.Add(ctx, *userID, body.SongID); err != nil {
		if errors.Is(err, repositories.ErrAlreadyFavorite) {
			c.JSON(nethttp.StatusConflict, gin.H{"error": "song is already a favorite"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		return
	}

	c.JSON(nethttp.StatusCreated, gin.H{"success": true})
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	songID, err := strconv.ParseInt(c.Param("songId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid song id"})
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), *userID, songID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "song is not a favorite"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to remove favorite"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true})
}
