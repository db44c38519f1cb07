package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/middleware"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
	"github.com/jdeans2217/canvas-parent-cli/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	authService := new(mocks.MockAuthService)
	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(authService), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	authService.AssertNotCalled(t, "ValidateToken", "")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	authService := new(mocks.MockAuthService)
	authService.On("ValidateToken", "bad-token").Return(nil, domain.ErrUnauthorized)

	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(authService), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidTokenInjectsContext(t *testing.T) {
	caregiverID := uuid.New()
	authService := new(mocks.MockAuthService)
	authService.On("ValidateToken", "good-token").Return(&service.Claims{
		CaregiverID: caregiverID,
		Email:       "parent@example.com",
	}, nil)

	var gotID uuid.UUID
	var gotEmail string
	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(authService), func(c *gin.Context) {
		id, err := middleware.GetCaregiverID(c)
		require.NoError(t, err)
		gotID = id
		gotEmail = middleware.GetEmail(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, caregiverID, gotID)
	assert.Equal(t, "parent@example.com", gotEmail)
}
