package handlers

import (
	"context"
	"database/sql"
	"errors"
	nethttp "net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"music-service/internal/metrics"
	"music-service/internal/models"
	"music-service/internal/repositories"
	"music-service/internal/telemetry"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

type FriendHandler struct {
	friendships repositories.FriendshipRepository
	users       repositories.UserRepository
	audit       *telemetry.AuditEmitter
}

func NewFriendHandler(friendships repositories.FriendshipRepository, users repositories.UserRepository, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{friendships: friendships, users: users, audit: audit}
}

type sendRequestBody struct {
	RecipientID int64 `json:"recipient_id" binding:"required"`
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.emitAudit(c.Request.Context(), "ERROR", "invalid request payload", requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if userID == nil {
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	requesterID := *userID

	if body.RecipientID == requesterID {
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "cannot send a friend request to yourself"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.GetByID(ctx, body.RecipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.emitAudit(ctx, "ERROR", "friend request target not found", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user does not exist"})
			return
		}
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to look up user"})
		return
	}

	friendship, err := h.friendships.CreateRequest(ctx, requesterID, body.RecipientID)
	if err != nil {
		var incoming *repositories.IncomingRequestError
		switch {
		case errors.Is(err, repositories.ErrAlreadyFriends):
			h.emitAudit(ctx, "ERROR", "users are already friends", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusConflict, gin.H{"error": "users are already friends"})
		case errors.Is(err, repositories.ErrDuplicateRequest):
			h.emitAudit(ctx, "ERROR", "duplicate outgoing friend request", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusConflict, gin.H{"error": "friend request already sent", "status": "outgoing"})
		case errors.As(err, &incoming):
			h.emitAudit(ctx, "ERROR", "counterpart already sent a friend request", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusConflict, gin.H{
				"error":         "this user already sent you a friend request",
				"status":        "incoming",
				"friendship_id": incoming.FriendshipID,
			})
		default:
			h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to create friend request"})
		}
		return
	}

	h.emitAudit(ctx, "INFO", "Friend request sent to '"+strconv.FormatInt(body.RecipientID, 10)+"'", requestID, userID)
	metrics.IncFriendRequest(metrics.StatusSuccess)
	c.JSON(nethttp.StatusCreated, gin.H{"success": true, "friendship_id": friendship.ID})
}

func (h *FriendHandler) List(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	friendships, err := h.friendships.ListForUser(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch friendships"})
		return
	}

	if friendships == nil {
		friendships = []models.FriendshipWithUser{}
	}

	c.JSON(nethttp.StatusOK, gin.H{"success": true, "friendships": friendships})
}

func (h *FriendHandler) Search(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		metrics.IncFriendSearch(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	query := c.Query("query")
	if query == "" {
		metrics.IncFriendSearch(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	ctx := c.Request.Context()
	var (
		users []models.PublicUser
		err   error
	)
	if c.Query("searchType") == "id" {
		if !digitsOnly.MatchString(query) {
			metrics.IncFriendSearch(metrics.StatusFailed)
			c.JSON(nethttp.StatusBadRequest, gin.H{"error": "id search accepts digits only"})
			return
		}
		users, err = h.users.SearchByIDSubstring(ctx, *userID, query)
	} else {
		users, err = h.users.SearchByNickOrEmail(ctx, *userID, query)
	}
	if err != nil {
		metrics.IncFriendSearch(metrics.StatusFailed)
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to search users"})
		return
	}

	if users == nil {
		users = []models.PublicUser{}
	}

	metrics.IncFriendSearch(metrics.StatusSuccess)
	c.JSON(nethttp.StatusOK, gin.H{"success": true, "users": users})
}

func (h *FriendHandler) Accept(c *gin.Context) {
	h.handleDecision(c, h.friendships.Accept, "accept", metrics.IncFriendAccept)
}

func (h *FriendHandler) Reject(c *gin.Context) {
	h.handleDecision(c, h.friendships.Reject, "reject", metrics.IncFriendReject)
}

func (h *FriendHandler) Remove(c *gin.Context) {
	h.handleDecision(c, h.friendships.Remove, "remove", metrics.IncFriendRemove)
}

func (h *FriendHandler) handleDecision(c *gin.Context, action func(ctx context.Context, friendshipID, userID int64) error, verb string, inc func(string)) {
	idStr := c.Param("id")
	friendshipID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		inc(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid friendship id"})
		return
	}

	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		inc(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	if err := action(ctx, friendshipID, *userID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.emitAudit(ctx, "ERROR", "friendship not found", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "friendship not found"})
		case errors.Is(err, repositories.ErrFriendshipForbidden):
			h.emitAudit(ctx, "ERROR", "not allowed to "+verb+" this friendship", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusForbidden, gin.H{"error": "not allowed to " + verb + " this friendship"})
		default:
			h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to " + verb + " friendship"})
		}
		return
	}

	h.emitAudit(ctx, "INFO", "Friendship "+verb+" for '"+idStr+"'", requestID, userID)
	inc(metrics.StatusSuccess)
	c.JSON(nethttp.StatusOK, gin.H{"success": true})
}

func (h *FriendHandler) emitAudit(ctx context.Context, level, text, requestID string, userID *int64) {
	if h.audit == nil {
		return
	}
	h.audit.EmitAudit(ctx, level, text, requestID, userID)
}
