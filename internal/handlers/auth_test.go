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
	"music-service/internal/services"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	return r
}

func TestRegisterMissingFieldsReturnsGeneralError(t *testing.T) {
	handler := NewAuthHandler(new(mocks.MockUserRepository), services.NewAuthService("secret"))
	router := setupAuthRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(`{"nick":"alice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, false, resp["success"])
	errs := resp["errors"].(map[string]any)
	require.Contains(t, errs, "general")
}

func TestRegisterTakenNickReportsFieldError(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewAuthHandler(mockUsers, services.NewAuthService("secret"))
	router := setupAuthRouter(handler)

	mockUsers.On("NickTaken", mock.Anything, "alice", int64(0)).Return(true, nil).Once()
	mockUsers.On("EmailTaken", mock.Anything, "alice@example.com").Return(false, nil).Once()

	body := `{"nick":"alice","email":"alice@example.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	errs := resp["errors"].(map[string]any)
	require.Contains(t, errs, "nick")
	require.NotContains(t, errs, "email")
	mockUsers.AssertExpectations(t)
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewAuthHandler(mockUsers, services.NewAuthService("secret"))
	router := setupAuthRouter(handler)

	mockUsers.On("NickTaken", mock.Anything, "alice", int64(0)).Return(false, nil).Once()
	mockUsers.On("EmailTaken", mock.Anything, "alice@example.com").Return(false, nil).Once()
	mockUsers.On("Count", mock.Anything).Return(int64(0), nil).Once()
	mockUsers.On("Create", mock.Anything, "alice", "alice@example.com", mock.AnythingOfType("string"), true).
		Return(&models.User{ID: 1, Nick: "alice", Email: "alice@example.com", IsAdmin: true}, nil).Once()

	body := `{"nick":"alice","email":"alice@example.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, true, resp["success"])
	user := resp["user"].(map[string]any)
	require.Equal(t, float64(1), user["id"])
	mockUsers.AssertExpectations(t)
}

func TestRegisterSecondUserIsNotAdmin(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewAuthHandler(mockUsers, services.NewAuthService("secret"))
	router := setupAuthRouter(handler)

	mockUsers.On("NickTaken", mock.Anything, "bob", int64(0)).Return(false, nil).Once()
	mockUsers.On("EmailTaken", mock.Anything, "bob@example.com").Return(false, nil).Once()
	mockUsers.On("Count", mock.Anything).Return(int64(1), nil).Once()
	mockUsers.On("Create", mock.Anything, "bob", "bob@example.com", mock.AnythingOfType("string"), false).
		Return(&models.User{ID: 2, Nick: "bob", Email: "bob@example.com"}, nil).Once()

	body := `{"nick":"bob","email":"bob@example.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestLoginUnknownEmailReturnsUnauthorized(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	handler := NewAuthHandler(mockUsers, services.NewAuthService("secret"))
	router := setupAuthRouter(handler)

	mockUsers.On("GetByEmail", mock.Anything, "ghost@example.com").Return((*models.User)(nil), sql.ErrNoRows).Once()

	body := `{"email":"ghost@example.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestLoginWrongPasswordReturnsUnauthorized(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	auth := services.NewAuthService("secret")
	handler := NewAuthHandler(mockUsers, auth)
	router := setupAuthRouter(handler)

	hash, err := auth.HashPassword("correct")
	require.NoError(t, err)
	mockUsers.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: 1, Email: "alice@example.com", PasswordHash: hash}, nil).Once()

	body := `{"email":"alice@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestLoginSuccessReturnsToken(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	auth := services.NewAuthService("secret")
	handler := NewAuthHandler(mockUsers, auth)
	router := setupAuthRouter(handler)

	hash, err := auth.HashPassword("correct")
	require.NoError(t, err)
	mockUsers.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: 1, Nick: "alice", Email: "alice@example.com", PasswordHash: hash}, nil).Once()

	body := `{"email":"alice@example.com","password":"correct"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, true, resp["success"])
	require.NotEmpty(t, resp["token"])
	require.Equal(t, float64(auth.TokenTTL().Seconds()), resp["expires_in"])
	mockUsers.AssertExpectations(t)
}
