package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"music-service/internal/models"
	"music-service/internal/repositories"
)

const (
	maxAudioUploadBytes = 50 << 20
	maxImageUploadBytes = 20 << 20
)

type FileHandler struct {
	songs      repositories.SongRepository
	users      repositories.UserRepository
	uploadsDir string
}

func NewFileHandler(songs repositories.SongRepository, users repositories.UserRepository, uploadsDir string) *FileHandler {
	return &FileHandler{songs: songs, users: users, uploadsDir: uploadsDir}
}

func (h *FileHandler) UploadSong(c *gin.Context) {
	userIDVal, _ := c.Get("userID")
	userID := userIDVal.(int64)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if file.Size > maxAudioUploadBytes {
		c.JSON(nethttp.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the 50MB limit"})
		return
	}

	mimetype := file.Header.Get("Content-Type")
	if !strings.HasPrefix(mimetype, "audio/") {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "only audio files are accepted"})
		return
	}

	title := c.PostForm("title")
	artist := c.PostForm("artist")
	if title == "" || artist == "" {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "title and artist are required"})
		return
	}
	duration, _ := strconv.Atoi(c.PostForm("duration_seconds"))

	songDir := filepath.Join(h.uploadsDir, "songs")
	if err := os.MkdirAll(songDir, 0o755); err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to create upload directory"})
		return
	}

	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	dstPath := filepath.Join(songDir, filename)
	if err := c.SaveUploadedFile(file, dstPath); err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	song, err := h.songs.Create(c.Request.Context(), &models.Song{
		Title:           title,
		Artist:          artist,
		DurationSeconds: duration,
		ReleaseDate:     c.PostForm("release_date"),
		Filename:        file.Filename,
		Filepath:        dstPath,
		Mimetype:        mimetype,
		Filesize:        file.Size,
		UploadedBy:      userID,
	})
	if err != nil {
		os.Remove(dstPath)
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to store song"})
		return
	}

	c.JSON(nethttp.StatusCreated, gin.H{"success": true, "song": song})
}

func (h *FileHandler) DownloadSong(c *gin.Context) {
	songID, err := strconv.ParseInt(c.Param("songId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid song id"})
		return
	}

	song, err := h.songs.GetByID(c.Request.Context(), songID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "song not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch song"})
		return
	}

	if _, err := os.Stat(song.Filepath); err != nil {
		c.JSON(nethttp.StatusNotFound, gin.H{"error": "song file is missing"})
		return
	}

	c.Header("Content-Type", song.Mimetype)
	c.FileAttachment(song.Filepath, song.Filename)
}

func (h *FileHandler) UploadProfileImage(c *gin.Context) {
	userIDVal, _ := c.Get("userID")
	userID := userIDVal.(int64)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if file.Size > maxImageUploadBytes {
		c.JSON(nethttp.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the 20MB limit"})
		return
	}

	mimetype := file.Header.Get("Content-Type")
	if !strings.HasPrefix(mimetype, "image/") {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "only image files are accepted"})
		return
	}

	ctx := c.Request.Context()
	oldPath, err := h.users.GetProfileImagePath(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user does not exist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}

	imageDir := filepath.Join(h.uploadsDir, "profile-images", strconv.FormatInt(userID, 10))
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to create upload directory"})
		return
	}

	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	dstPath := filepath.Join(imageDir, filename)
	if err := c.SaveUploadedFile(file, dstPath); err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	if err := h.users.SetProfileImagePath(ctx, userID, dstPath); err != nil {
		os.Remove(dstPath)
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	// replaced image is garbage once the new path is committed
	if oldPath != "" && oldPath != dstPath {
		os.Remove(oldPath)
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true, "profile_image_path": dstPath})
}

func (h *FileHandler) ProfileImage(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	path, err := h.users.GetProfileImagePath(c.Request.Context(), targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user does not exist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}
	if path == "" {
		c.JSON(nethttp.StatusNotFound, gin.H{"error": "no profile image set"})
		return
	}
	if _, err := os.Stat(path); err != nil {
		c.JSON(nethttp.StatusNotFound, gin.H{"error": "profile image is missing"})
		return
	}

	c.File(path)
}
