package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"music-service/internal/mocks"
	"music-service/internal/models"
	"music-service/internal/repositories"
)

func setupMessagesRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", int64(1))
		c.Next()
	})
	r.GET("/messages/:friendId", handler.History)
	r.GET("/messages/:friendId/new", handler.New)
	r.POST("/messages/send", handler.Send)
	r.PUT("/messages/read/:messageId", handler.MarkRead)
	return r
}

func TestHistoryMarksConversationRead(t *testing.T) {
	mockMessages := new(mocks.MockMessageRepository)
	handler := NewMessageHandler(mockMessages, new(mocks.MockUserRepository))
	router := setupMessagesRouter(handler)

	mockMessages.On("History", mock.Anything, int64(1), int64(2)).Return([]models.Message{
		{ID: 1, SenderID: 2, RecipientID: 1, Content: "ciphertext", KeyTimestamp: 100},
	}, nil).Once()
	mockMessages.On("MarkConversationRead", mock.Anything, int64(1), int64(2)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	messages := resp["messages"].([]any)
	require.Len(t, messages, 1)
	entry := messages[0].(map[string]any)
	require.Equal(t, float64(2), entry["sender"])
	require.Equal(t, "ciphertext", entry["content"])
	mockMessages.AssertExpectations(t)
}

func TestHistoryPollingDoesNotTouchReadState(t *testing.T) {
	mockMessages := new(mocks.MockMessageRepository)
	handler := NewMessageHandler(mockMessages, new(mocks.MockUserRepository))
	router := setupMessagesRouter(handler)

	mockMessages.On("HistoryAfter", mock.Anything, int64(1), int64(2), int64(5)).
		Return(([]models.Message)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/2/new?after=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	messages, ok := resp["messages"].([]any)
	require.True(t, ok)
	require.Empty(t, messages)
	mockMessages.AssertExpectations(t)
	mockMessages.AssertNotCalled(t, "MarkConversationRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryInvalidAfterReturnsBadRequest(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MockMessageRepository), new(mocks.MockUserRepository))
	router := setupMessagesRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/messages/2/new?after=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendEmptyContentReturnsBadRequest(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MockMessageRepository), new(mocks.MockUserRepository))
	router := setupMessagesRouter(handler)

	body := `{"recipient_id":2,"content":"","key_timestamp":100}`
	req := httptest.NewRequest(http.MethodPost, "/messages/send", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendNonPositiveKeyTimestampReturnsBadRequest(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MockMessageRepository), new(mocks.MockUserRepository))
	router := setupMessagesRouter(handler)

	body := `{"recipient_id":2,"content":"ciphertext","key_timestamp":0}`
	req := httptest.NewRequest(http.MethodPost, "/messages/send", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendToUnknownRecipientReturnsNotFound(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewMessageHandler(new(mocks.MockMessageRepository), mockUsers)
	router := setupMessagesRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(99)).Return((*models.User)(nil), sql.ErrNoRows).Once()

	body := `{"recipient_id":99,"content":"ciphertext","key_timestamp":100}`
	req := httptest.NewRequest(http.MethodPost, "/messages/send", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestSendSuccess(t *testing.T) {
	mockMessages := new(mocks.MockMessageRepository)
	mockUsers := new(mocks.MockUserRepository)
	handler := NewMessageHandler(mockMessages, mockUsers)
	router := setupMessagesRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(2)).Return(&models.User{ID: 2}, nil).Once()
	mockMessages.On("Create", mock.Anything, int64(1), int64(2), "ciphertext", int64(100)).
		Return(&models.Message{ID: 7, SenderID: 1, RecipientID: 2, Content: "ciphertext", KeyTimestamp: 100}, nil).Once()

	body := `{"recipient_id":2,"content":"ciphertext","key_timestamp":100}`
	req := httptest.NewRequest(http.MethodPost, "/messages/send", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	msg := resp["message"].(map[string]any)
	require.Equal(t, float64(7), msg["id"])
	mockMessages.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestMarkReadByNonRecipientReturnsForbidden(t *testing.T) {
	mockMessages := new(mocks.MockMessageRepository)
	handler := NewMessageHandler(mockMessages, new(mocks.MockUserRepository))
	router := setupMessagesRouter(handler)

	mockMessages.On("MarkRead", mock.Anything, int64(7), int64(1)).Return(repositories.ErrNotRecipient).Once()

	req := httptest.NewRequest(http.MethodPut, "/messages/read/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	mockMessages.AssertExpectations(t)
}

func TestMarkReadUnknownMessageReturnsNotFound(t *testing.T) {
	mockMessages := new(mocks.MockMessageRepository)
	handler := NewMessageHandler(mockMessages, new(mocks.MockUserRepository))
	router := setupMessagesRouter(handler)

	mockMessages.On("MarkRead", mock.Anything, int64(99), int64(1)).Return(sql.ErrNoRows).Once()

	req := httptest.NewRequest(http.MethodPut, "/messages/read/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	mockMessages.AssertExpectations(t)
}
