package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/court-reservation/internal/auth"
)

type stubRoles map[string]bool

func (s stubRoles) IsAdmin(_ context.Context, userID string) (bool, error) {
	if userID == "broken" {
		return false, errors.New("db down")
	}
	return s[userID], nil
}

func newTestEngine(t *testing.T, jwt *auth.JWTManager, roles RoleResolver) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	echo := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": auth.GetUserID(c), "admin": auth.IsAdmin(c)})
	}
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/public", Viewer(jwt, roles), echo)
	r.GET("/private", auth.AuthRequired(jwt), LoadRole(roles), echo)
	r.GET("/admin", auth.AuthRequired(jwt), RequireAdmin(roles), echo)
	return r
}

func call(t *testing.T, r *gin.Engine, jwt *auth.JWTManager, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		token, err := jwt.GenerateAccessToken(userID, userID+"@example.com")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoleMiddlewares(t *testing.T) {
	jwt := auth.NewJWTManager("api-test-secret", time.Hour)
	roles := stubRoles{"root": true, "member": false}
	r := newTestEngine(t, jwt, roles)

	tests := []struct {
		name     string
		path     string
		userID   string
		wantCode int
		wantBody string
	}{
		{"public anonymous", "/public", "", http.StatusOK, `{"user":"","admin":false}`},
		{"public admin", "/public", "root", http.StatusOK, `{"user":"root","admin":true}`},
		{"public role lookup failure", "/public", "broken", http.StatusOK, `{"user":"broken","admin":false}`},
		{"private anonymous", "/private", "", http.StatusUnauthorized, ""},
		{"private member", "/private", "member", http.StatusOK, `{"user":"member","admin":false}`},
		{"private admin", "/private", "root", http.StatusOK, `{"user":"root","admin":true}`},
		{"private role lookup failure", "/private", "broken", http.StatusInternalServerError, ""},
		{"admin as member", "/admin", "member", http.StatusForbidden, ""},
		{"admin as admin", "/admin", "root", http.StatusOK, `{"user":"root","admin":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(t, r, jwt, tt.path, tt.userID)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	jwt := auth.NewJWTManager("api-test-secret", time.Hour)
	r := newTestEngine(t, jwt, stubRoles{})

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set(requestIDHeader, "6f1c2d8e-95a4-4f77-b1a8-3f1f0e3b9d10")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "6f1c2d8e-95a4-4f77-b1a8-3f1f0e3b9d10", w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set(requestIDHeader, "not a uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(requestIDHeader))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		r := gin.New()
		r.GET("/health", healthHandler(stubPinger{err: tc.err}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, tc.want, w.Code)
	}
}

func TestCorsConfig(t *testing.T) {
	dev := corsConfig(Config{})
	assert.Contains(t, dev.AllowOrigins, "http://localhost:3000")

	prod := corsConfig(Config{IsProduction: true, ProdOrigins: "https://courts.example.com, https://admin.example.com ,"})
	assert.Equal(t, []string{"https://courts.example.com", "https://admin.example.com"}, prod.AllowOrigins)
}
