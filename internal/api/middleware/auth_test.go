package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezyday/breezyday/internal/api/middleware"
	"github.com/breezyday/breezyday/internal/auth"
)

type stubValidator struct {
	userID string
	err    error
}

func (v stubValidator) ValidateAccessToken(string) (string, error) {
	return v.userID, v.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_RejectsBadHeaders(t *testing.T) {
	handler := middleware.Auth(stubValidator{userID: "usr_1"})(okHandler())

	tests := []struct {
		name   string
		header string
		detail string
	}{
		{"missing", "", "missing authorization header"},
		{"no bearer prefix", "token123", "invalid authorization header format"},
		{"basic auth", "Basic dXNlcjpwYXNz", "invalid authorization header format"},
		{"bearer no space", "bearertoken123", "invalid authorization header format"},
		{"empty bearer", "Bearer    ", "missing bearer token"},
		{"just bearer", "Bearer", "invalid authorization header format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, `Bearer realm="breezyday"`, rec.Header().Get("WWW-Authenticate"))
			assert.Contains(t, rec.Body.String(), tt.detail)
		})
	}
}

func TestAuth_ValidatorErrors(t *testing.T) {
	tests := []struct {
		err    error
		detail string
	}{
		{auth.ErrAccessTokenExpired, "access token has expired"},
		{auth.ErrInvalidAccessToken, "invalid access token"},
		{errors.New("boom"), "authentication failed"},
	}

	for _, tt := range tests {
		t.Run(tt.detail, func(t *testing.T) {
			handler := middleware.Auth(stubValidator{err: tt.err})(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			req.Header.Set("Authorization", "Bearer abc")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.detail)
		})
	}
}

func TestAuth_ValidToken(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SigningKey: "test-secret-key-for-testing-only"})
	service := auth.NewService(auth.ServiceConfig{
		JWTService:  jwtService,
		UserRepo:    auth.NewInMemoryUserRepository(),
		RefreshRepo: auth.NewInMemoryRefreshTokenRepository(),
	})

	user := &auth.User{ID: "usr_testuser123", Email: "amy@example.com", CreatedAt: time.Now()}
	token, _, err := jwtService.GenerateAccessToken(user)
	require.NoError(t, err)

	var captured string
	handler := middleware.Auth(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	for _, prefix := range []string{"Bearer ", "bearer ", "BEARER "} {
		t.Run(prefix, func(t *testing.T) {
			captured = ""
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			req.Header.Set("Authorization", prefix+token)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, user.ID, captured)
		})
	}
}

func TestAuth_UserIDReachesRequestLog(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.Logger(zerolog.New(&buf))(
		middleware.Auth(stubValidator{userID: "usr_logged"})(okHandler()),
	)

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "usr_logged", entry["user_id"])
}

func TestGetUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	assert.Empty(t, middleware.GetUserID(req.Context()))

	ctx := middleware.WithUserID(req.Context(), "usr_1")
	assert.Equal(t, "usr_1", middleware.GetUserID(ctx))
}
