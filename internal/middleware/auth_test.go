package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/carlog/internal/auth"
	"github.com/ukydev/carlog/internal/config"
	"github.com/ukydev/carlog/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthService(t *testing.T, secret string) *auth.Service {
	t.Helper()
	service, err := auth.NewService(config.AuthConfig{JWTSecret: secret, TokenExp: time.Hour})
	require.NoError(t, err)
	return service
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService := newAuthService(t, "test-secret")
	middleware := NewAuthMiddleware(authService)

	t.Run("valid token", func(t *testing.T) {
		user := &models.User{ID: primitive.NewObjectID(), Email: "test@example.com"}
		token, err := authService.GenerateToken(user)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/vehicles", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			claims, ok := GetUserFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, user.ID.Hex(), claims.UserID)
			assert.Equal(t, user.Email, claims.Email)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	rejected := []struct {
		name   string
		header string
	}{
		{"missing authorization header", ""},
		{"malformed header", "Token abc"},
		{"invalid token", "Bearer invalid-token"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/vehicles", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			middleware.Authenticate(handler).ServeHTTP(w, req)
			assert.False(t, handlerCalled)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	t.Run("token signed with another secret", func(t *testing.T) {
		other := newAuthService(t, "other-secret")
		token, err := other.GenerateToken(&models.User{ID: primitive.NewObjectID()})
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/vehicles", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		middleware.Authenticate(http.NotFoundHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	for _, path := range []string{"/api/auth/login", "/api/auth/register", "/health"} {
		t.Run("skip auth "+path, func(t *testing.T) {
			req := httptest.NewRequest("POST", path, nil)
			w := httptest.NewRecorder()

			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			middleware.Authenticate(handler).ServeHTTP(w, req)
			assert.True(t, handlerCalled)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}

	t.Run("profile is not public", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/profile", nil)
		w := httptest.NewRecorder()

		middleware.Authenticate(http.NotFoundHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("prefix lookalike is not public", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/healthz", nil)
		w := httptest.NewRecorder()

		middleware.Authenticate(http.NotFoundHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware(false)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	middleware.now = func() time.Time { return now }

	calls := 0
	handler := middleware.RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	serve := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, serve("192.168.1.1:12345").Code)
	assert.Equal(t, http.StatusOK, serve("192.168.1.1:12346").Code)

	w := serve("192.168.1.1:12347")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, serve("192.168.1.2:12345").Code)

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, serve("192.168.1.1:12345").Code)
	assert.Equal(t, 4, calls)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getClientIP(req, false))
	assert.Equal(t, "10.0.0.1", getClientIP(req, true))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.1", getClientIP(req, false))
	assert.Equal(t, "10.0.0.2", getClientIP(req, true))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.1", getClientIP(req, false))
	assert.Equal(t, "10.0.0.4", getClientIP(req, true))

	req.RemoteAddr = "[::1]:5555"
	assert.Equal(t, "::1", getClientIP(req, false))
}

func TestRateLimitMiddleware_IgnoresSpoofedForwardedFor(t *testing.T) {
	middleware := NewRateLimitMiddleware(false)
	handler := middleware.RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	serve := func(forwarded string) int {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, serve("2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, serve("3.3.3.3"))
}

func TestGetUserFromContext(t *testing.T) {
	claims := &models.Claims{UserID: "test-id", Email: "test@example.com"}

	retrieved, ok := GetUserFromContext(WithUser(context.Background(), claims))
	assert.True(t, ok)
	assert.Equal(t, claims, retrieved)

	_, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)

	// a plain string key must not collide with ours
	_, ok = GetUserFromContext(context.WithValue(context.Background(), "user", claims)) //nolint:staticcheck
	assert.False(t, ok)
}
