package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ichwanardi/portfolio/internal/app"
	"github.com/ichwanardi/portfolio/internal/handlers/testutil"
	"github.com/ichwanardi/portfolio/internal/models"
)

func TestAuthLoginMeLogout(t *testing.T) {
	env := testutil.NewEnv(t)

	session := env.Login()
	require.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	cookie := env.SessionCookie()
	require.NotNil(t, cookie)

	w := env.Request(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var me testutil.SessionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &me)
	require.Equal(t, testutil.AdminUsername, me.Username)

	w = env.Request(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Nil(t, env.SessionCookie())

	var stored models.AdminSession
	require.NoError(t, env.DB.First(&stored).Error)
	require.NotNil(t, stored.RevokedAt)

	// Replaying the old cookie must fail once the session is revoked.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLoginRejectsBadPassword(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"username": testutil.AdminUsername,
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	require.Nil(t, env.SessionCookie())

	w = env.Request(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthLoginRateLimited(t *testing.T) {
	env := testutil.NewEnv(t, testutil.WithConfig(func(cfg *app.Config) {
		cfg.Auth.Login = app.LoginSettings{MaxAttempts: 2, Window: time.Minute}
	}))

	body := map[string]string{"username": "admin", "password": "wrong"}
	for i := 0; i < 2; i++ {
		w := env.Request(http.MethodPost, "/api/auth/login", body)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := env.Request(http.MethodPost, "/api/auth/login", body)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestAuthMeWithoutSession(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotEmpty(t, w.Header().Get("X-CSRF-Token"))
}

func TestAuthLoginRequiresCSRF(t *testing.T) {
	env := testutil.NewEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"password"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
