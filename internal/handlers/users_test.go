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
)

func setupUsersRouter(handler *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", int64(1))
		c.Next()
	})
	r.GET("/users/profile", handler.Profile)
	r.PUT("/users/change-nick", handler.ChangeNick)
	r.GET("/users/list", handler.List)
	r.PUT("/users/toggleAdmin/:userId", handler.ToggleAdmin)
	r.DELETE("/users/:userId", handler.Delete)
	return r
}

func TestProfileReturnsOwnAccount(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(1)).
		Return(&models.User{ID: 1, Nick: "alice", Email: "alice@example.com"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	user := resp["user"].(map[string]any)
	require.Equal(t, "alice", user["nick"])
	require.NotContains(t, user, "password_hash")
	mockUsers.AssertExpectations(t)
}

func TestChangeNickTooShortReturnsBadRequest(t *testing.T) {
	handler := NewUserHandler(new(mocks.MockUserRepository))
	router := setupUsersRouter(handler)

	req := httptest.NewRequest(http.MethodPut, "/users/change-nick", bytes.NewBufferString(`{"new_nick":"ab"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeNickInvalidCharactersReturnsBadRequest(t *testing.T) {
	handler := NewUserHandler(new(mocks.MockUserRepository))
	router := setupUsersRouter(handler)

	req := httptest.NewRequest(http.MethodPut, "/users/change-nick", bytes.NewBufferString(`{"new_nick":"bad nick!"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeNickTakenReturnsConflict(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("NickTaken", mock.Anything, "taken_nick", int64(1)).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/users/change-nick", bytes.NewBufferString(`{"new_nick":"taken_nick"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestChangeNickSuccessReportsOldAndNew(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("NickTaken", mock.Anything, "new_nick", int64(1)).Return(false, nil).Once()
	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, Nick: "old_nick"}, nil).Once()
	mockUsers.On("UpdateNick", mock.Anything, int64(1), "new_nick").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/users/change-nick", bytes.NewBufferString(`{"new_nick":"new_nick"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "old_nick", resp["old_nick"])
	require.Equal(t, "new_nick", resp["new_nick"])
	mockUsers.AssertExpectations(t)
}

func TestListRequiresAdmin(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, IsAdmin: false}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/list", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestListAsAdmin(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, IsAdmin: true}, nil).Once()
	mockUsers.On("List", mock.Anything).Return([]models.User{
		{ID: 1, Nick: "alice", IsAdmin: true},
		{ID: 2, Nick: "bob"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/list", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["users"].([]any), 2)
	mockUsers.AssertExpectations(t)
}

func TestToggleAdminOnSelfReturnsBadRequest(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, IsAdmin: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/users/toggleAdmin/1", bytes.NewBufferString(`{"is_admin":false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestToggleAdminSuccess(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, IsAdmin: true}, nil).Once()
	mockUsers.On("SetAdmin", mock.Anything, int64(2), true).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/users/toggleAdmin/2", bytes.NewBufferString(`{"is_admin":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestToggleAdminUnknownUserReturnsNotFound(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, IsAdmin: true}, nil).Once()
	mockUsers.On("SetAdmin", mock.Anything, int64(99), true).Return(sql.ErrNoRows).Once()

	req := httptest.NewRequest(http.MethodPut, "/users/toggleAdmin/99", bytes.NewBufferString(`{"is_admin":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestDeleteSelfReturnsBadRequest(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, IsAdmin: true}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestDeleteUserSuccess(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, IsAdmin: true}, nil).Once()
	mockUsers.On("GetByID", mock.Anything, int64(2)).Return(&models.User{ID: 2, Nick: "bob"}, nil).Once()
	mockUsers.On("Delete", mock.Anything, int64(2)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/users/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Contains(t, resp["message"], "bob")
	mockUsers.AssertExpectations(t)
}

func TestDeleteAsNonAdminReturnsForbidden(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewUserHandler(mockUsers)
	router := setupUsersRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, IsAdmin: false}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/users/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	mockUsers.AssertExpectations(t)
}
