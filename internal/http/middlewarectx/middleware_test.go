package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/rental-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rental-portal/internal/lib/jwt"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

const secret = "test-secret"

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker(secret, time.Hour)
	userToken, err := maker.GenerateToken("U1", "u1@example.com", "")
	require.NoError(t, err)
	adminToken, err := maker.GenerateToken("A1", "admin@example.com", session.RoleAdmin)
	require.NoError(t, err)
	foreign, err := jwt.NewJWTMaker("other", time.Hour).GenerateToken("U1", "u1@example.com", "")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantSess   *session.Session
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "basic auth", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
		{
			name: "user", header: "Bearer " + userToken, wantStatus: http.StatusOK,
			wantSess: &session.Session{UserID: "U1", Email: "u1@example.com", Role: jwt.RoleAuthenticated, AccessToken: userToken},
		},
		{
			name: "admin", header: "Bearer " + adminToken, wantStatus: http.StatusOK,
			wantSess: &session.Session{UserID: "A1", Email: "admin@example.com", Role: session.RoleAdmin, AccessToken: adminToken},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *session.Session
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = session.FromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			h := middlewarectx.JWTMiddleware(maker, sl.Discard())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantSess, got)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := middlewarectx.RequireAdmin(sl.Discard())(next)

	tests := []struct {
		name       string
		sess       *session.Session
		wantStatus int
	}{
		{name: "no session", wantStatus: http.StatusUnauthorized},
		{name: "client", sess: &session.Session{UserID: "U1", Role: "authenticated"}, wantStatus: http.StatusForbidden},
		{name: "admin", sess: &session.Session{UserID: "A1", Role: session.RoleAdmin}, wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/cars", nil)
			if tt.sess != nil {
				req = req.WithContext(session.WithSession(req.Context(), tt.sess))
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 2)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := middlewarectx.RateLimitMiddleware(sl.Discard(), limiter)(next)

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
