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

type PlaylistHandler struct {
	playlists repositories.PlaylistRepository
	songs     repositories.SongRepository
}

func NewPlaylistHandler(playlists repositories.PlaylistRepository, songs repositories.SongRepository) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, songs: songs}
}

func (h *PlaylistHandler) List(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	playlists, err := h.playlists.ListForUser(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch playlists"})
		return
	}
	if playlists == nil {
		playlists = []models.PlaylistSummary{}
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true, "playlists": playlists})
}

func (h *PlaylistHandler) Get(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	playlistID, err := strconv.ParseInt(c.Param("playlistId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid playlist id"})
		return
	}

	ctx := c.Request.Context()
	playlist, err := h.playlists.GetOwned(ctx, playlistID, *userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "playlist not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch playlist"})
		return
	}

	songs, err := h.playlists.Songs(ctx, playlistID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch playlist songs"})
		return
	}
	if songs == nil {
		songs = []models.PlaylistSong{}
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true, "playlist": playlist, "songs": songs})
}

type playlistBody struct {
	Name string `json:"name" binding:"required"`
}

func (h *PlaylistHandler) Create(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body playlistBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	playlist, err := h.playlists.Create(c.Request.Context(), *userID, body.Name)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to create playlist"})
		return
	}

	c.JSON(nethttp.StatusCreated, gin.H{"success": true, "playlist": playlist})
}

func (h *PlaylistHandler) Rename(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	playlistID, err := strconv.ParseInt(c.Param("playlistId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid playlist id"})
		return
	}

	var body playlistBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.playlists.Rename(c.Request.Context(), playlistID, *userID, body.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "playlist not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to rename playlist"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true})
}

func (h *PlaylistHandler) Delete(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	playlistID, err := strconv.ParseInt(c.Param("playlistId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid playlist id"})
		return
	}

	if err := h.playlists.Delete(c.Request.Context(), playlistID, *userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "playlist not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to delete playlist"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true})
}

type playlistSongBody struct {
	SongID int64 `json:"song_id" binding:"required"`
}

func (h *PlaylistHandler) AddSong(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	playlistID, err := strconv.ParseInt(c.Param("playlistId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid playlist id"})
		return
	}

	var body playlistSongBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "song_id is required"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.playlists.GetOwned(ctx, playlistID, *userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "playlist not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch playlist"})
		return
	}
	if _, err := h.songs.GetByID(ctx, body.SongID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "song not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch song"})
		return
	}

	if err := h.playlists.AddSong(ctx, playlistID, body.SongID); err != nil {
		if errors.Is(err, repositories.ErrSongAlreadyInPlaylist) {
			c.JSON(nethttp.StatusConflict, gin.H{"error": "song is already in the playlist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to add song"})
		return
	}

	c.JSON(nethttp.StatusCreated, gin.H{"success": true})
}

func (h *PlaylistHandler) RemoveSong(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	playlistID, err := strconv.ParseInt(c.Param("playlistId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid playlist id"})
		return
	}
	songID, err := strconv.ParseInt(c.Param("songId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid song id"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.playlists.GetOwned(ctx, playlistID, *userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "playlist not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch playlist"})
		return
	}

	if err := h.playlists.RemoveSong(ctx, playlistID, songID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "song is not in the playlist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to remove song"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true})
}
