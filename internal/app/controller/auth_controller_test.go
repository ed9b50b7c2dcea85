package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/internal/app/service"
	"github.com/vendsight/vendsight-backend/internal/db"
	"github.com/vendsight/vendsight-backend/internal/middleware"
)

func setupAuthControllerTest(t *testing.T) (*gin.Engine, service.AuthService) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, "test-secret", 15*time.Minute)

	ctrl := NewAuthController(authService)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	router.POST("/register", ctrl.Register)
	router.POST("/login", ctrl.Login)
	router.GET("/profile", authMiddleware.Authenticate(), ctrl.GetProfile)
	router.PUT("/profile", authMiddleware.Authenticate(), ctrl.UpdateProfile)

	return router, authService
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}, token string) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController_Register_Success(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := postJSON(t, router, "/register", RegisterRequest{
		Email:        "op@example.com",
		Password:     "password123",
		BusinessName: "Acme Vending",
	}, "")

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotNil(t, response["user"])
	assert.NotEmpty(t, response["token"])
}

func TestAuthController_Register_InvalidEmail(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := postJSON(t, router, "/register", RegisterRequest{
		Email:    "not-an-email",
		Password: "password123",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_Register_DuplicateEmail(t *testing.T) {
	router, authService := setupAuthControllerTest(t)

	_, _, err := authService.Register("op@example.com", "password123", "")
	require.NoError(t, err)

	w := postJSON(t, router, "/register", RegisterRequest{
		Email:    "op@example.com",
		Password: "password123",
	}, "")

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthController_Login_WrongPassword(t *testing.T) {
	router, authService := setupAuthControllerTest(t)

	_, _, err := authService.Register("op@example.com", "password123", "")
	require.NoError(t, err)

	w := postJSON(t, router, "/login", LoginRequest{
		Email:    "op@example.com",
		Password: "wrong",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_Profile_RequiresAuth(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	req := httptest.NewRequest("GET", "/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_Profile_RoundTrip(t *testing.T) {
	router, authService := setupAuthControllerTest(t)

	_, token, err := authService.Register("op@example.com", "password123", "Acme Vending")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		User struct {
			Email        string `json:"email"`
			BusinessName string `json:"business_name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "op@example.com", response.User.Email)
	assert.Equal(t, "Acme Vending", response.User.BusinessName)
}
