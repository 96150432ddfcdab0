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

type MessageHandler struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
}

func NewMessageHandler(messages repositories.MessageRepository, users repositories.UserRepository) *MessageHandler {
	return &MessageHandler{messages: messages, users: users}
}

// History returns the full conversation with a friend and marks the incoming
// half of it read.
func (h *MessageHandler) History(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	friendID, err := strconv.ParseInt(c.Param("friendId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	ctx := c.Request.Context()
	messages, err := h.messages.History(ctx, *userID, friendID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch messages"})
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	if err := h.messages.MarkConversationRead(ctx, *userID, friendID); err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to update read state"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true, "messages": messages})
}

// New returns messages with id greater than ?after=, for client polling.
// Polling does not touch read state.
func (h *MessageHandler) New(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	friendID, err := strconv.ParseInt(c.Param("friendId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	afterID := int64(0)
	if afterStr := c.Query("after"); afterStr != "" {
		afterID, err = strconv.ParseInt(afterStr, 10, 64)
		if err != nil {
			c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid after parameter"})
			return
		}
	}

	messages, err := h.messages.HistoryAfter(c.Request.Context(), *userID, friendID, afterID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch messages"})
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true, "messages": messages})
}

type sendMessageBody struct {
	RecipientID  int64  `json:"recipient_id" binding:"required"`
	Content      string `json:"content"`
	KeyTimestamp int64  `json:"key_timestamp"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid message payload"})
		return
	}
	if body.Content == "" {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "content must not be empty"})
		return
	}
	if body.KeyTimestamp <= 0 {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "key_timestamp must be a positive integer"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.GetByID(ctx, body.RecipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user does not exist"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to look up user"})
		return
	}

	msg, err := h.messages.Create(ctx, *userID, body.RecipientID, body.Content, body.KeyTimestamp)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	c.JSON(nethttp.StatusCreated, gin.H{"success": true, "message": msg})
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.messages.MarkRead(c.Request.Context(), messageID, *userID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "message not found"})
		case errors.Is(err, repositories.ErrNotRecipient):
			c.JSON(nethttp.StatusForbidden, gin.H{"error": "only the recipient may mark a message read"})
		default:
			c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to mark message read"})
		}
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true})
}
