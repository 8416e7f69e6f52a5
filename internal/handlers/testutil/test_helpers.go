package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/api"
	"github.com/ichwanardi/portfolio/internal/app"
	iauth "github.com/ichwanardi/portfolio/internal/auth"
	"github.com/ichwanardi/portfolio/internal/cache"
	sharedtestutil "github.com/ichwanardi/portfolio/internal/database/testutil"
	"github.com/ichwanardi/portfolio/internal/middleware"
	"github.com/ichwanardi/portfolio/internal/services"
	"github.com/ichwanardi/portfolio/pkg/response"
)

const (
	// AdminUsername and AdminPassword are the credentials every Env accepts.
	AdminUsername = "admin"
	AdminPassword = "password"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database and
// cache for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Store    *cache.MemoryStore
	Router   *gin.Engine
	Config   *app.Config
	Sessions *iauth.SessionService
	Blogs    *services.BlogService

	csrfToken     string
	csrfCookie    *http.Cookie
	sessionCookie *http.Cookie
}

// EnvOption customises NewEnv.
type EnvOption func(*envConfig)

type envConfig struct {
	static    fs.FS
	configure func(*app.Config)
}

// WithStatic serves files as the SPA frontend.
func WithStatic(files fs.FS) EnvOption {
	return func(cfg *envConfig) { cfg.static = files }
}

// WithConfig adjusts the router configuration before it is built.
func WithConfig(fn func(*app.Config)) EnvOption {
	return func(cfg *envConfig) { cfg.configure = fn }
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var options envConfig
	for _, opt := range opts {
		opt(&options)
	}

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())
	store := cache.NewMemoryStore(cache.WithEvictInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	cfg := &app.Config{
		Server: app.ServerConfig{
			SiteURL:   "https://example.test",
			SiteName:  "Example Portfolio",
			CSRF:      app.CSRFConfig{Enabled: true},
			RateLimit: app.RateLimitConfig{Requests: 1000, Window: time.Minute},
			HTTPCache: app.HTTPCacheConfig{MaxAge: time.Minute, StaleWhileRevalidate: 5 * time.Minute},
		},
		Auth: app.AuthConfig{
			Admin: app.AdminSettings{Username: AdminUsername, Password: AdminPassword},
			JWT:   app.JWTSettings{Secret: "test-suite-super-secret-key-32-bytes!!", Issuer: "test-suite"},
			Session: app.SessionSettings{
				TTL:        time.Hour,
				CacheTTL:   time.Minute,
				CookieName: middleware.DefaultSessionCookieName,
			},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
	if options.configure != nil {
		options.configure(cfg)
	}

	authenticator, err := iauth.NewAuthenticator(cfg.Auth.AdminCredentials())
	require.NoError(t, err)
	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	sessionCfg := cfg.Auth.SessionServiceConfig()
	sessionCfg.Cache = iauth.NewStoreSessionCache(store)
	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, sessionCfg)
	require.NoError(t, err)

	accessor := cache.NewAccessor(store)
	svcCfg := services.Config{QueryTimeout: time.Second, InvalidateOnWrite: true}
	blogs, err := services.NewBlogService(db, accessor, svcCfg)
	require.NoError(t, err)
	projects, err := services.NewProjectService(db, accessor, svcCfg)
	require.NoError(t, err)
	updates, err := services.NewUpdateService(db, accessor, svcCfg)
	require.NoError(t, err)
	home, err := services.NewHomeService(db, accessor, svcCfg)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Dependencies{
		Config:        cfg,
		DB:            db,
		CacheStore:    store,
		RateStore:     middleware.NewMemoryRateStore(),
		Authenticator: authenticator,
		Sessions:      sessionSvc,
		Blogs:         blogs,
		Projects:      projects,
		Updates:       updates,
		Home:          home,
		Static:        options.static,
	})
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Store:    store,
		Router:   router,
		Config:   cfg,
		Sessions: sessionSvc,
		Blogs:    blogs,
	}
}

// Cached reports whether key is currently present in the cache store.
func (e *Env) Cached(key string) bool {
	e.T.Helper()
	_, ok, err := e.Store.Get(context.Background(), key)
	require.NoError(e.T, err)
	return ok
}

// SessionPayload mirrors the login and me response payload.
type SessionPayload struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login authenticates as the admin and keeps the session cookie for later requests.
func (e *Env) Login() SessionPayload {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"username": AdminUsername,
		"password": AdminPassword,
	})
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result SessionPayload
	DecodeInto(e.T, resp.Data, &result)
	require.Equal(e.T, AdminUsername, result.Username)
	require.NotNil(e.T, e.sessionCookie, "login must set the session cookie")
	return result
}

// SessionCookie returns the admin session cookie captured by Login, if any.
func (e *Env) SessionCookie() *http.Cookie {
	return e.sessionCookie
}

// ForgetSession drops the stored session cookie.
func (e *Env) ForgetSession() {
	e.sessionCookie = nil
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// DecodeBody unmarshals a raw (non-envelope) JSON body.
func DecodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// Request executes an HTTP request against the test router. Bodies are JSON encoded
// and the session and CSRF cookies are attached automatically.
func (e *Env) Request(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		payload = data
	}
	return e.do(method, path, payload, "application/json", false)
}

// RequestRaw sends body verbatim with the given content type.
func (e *Env) RequestRaw(method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	e.T.Helper()
	return e.do(method, path, body, contentType, false)
}

func (e *Env) do(method, path string, body []byte, contentType string, skipCSRF bool) *httptest.ResponseRecorder {
	e.T.Helper()

	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(e.T, err)
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if e.sessionCookie != nil {
		req.AddCookie(e.sessionCookie)
	}

	if !skipCSRF && requiresCSRFAttestation(method) {
		e.ensureCSRFToken()
		if e.csrfCookie != nil {
			req.AddCookie(e.csrfCookie)
		}
		if e.csrfToken != "" {
			req.Header.Set(middleware.CSRFHeaderName, e.csrfToken)
		}
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	e.captureCookies(w.Result())
	return w
}

func (e *Env) ensureCSRFToken() {
	if e.csrfToken != "" && e.csrfCookie != nil {
		return
	}
	// /api/auth/me answers 401 without a session but still issues the token.
	e.do(http.MethodGet, "/api/auth/me", nil, "", true)
	require.NotEmpty(e.T, e.csrfToken, "csrf token must be issued")
}

func (e *Env) captureCookies(resp *http.Response) {
	if resp == nil {
		return
	}
	defer resp.Body.Close()

	if token := resp.Header.Get(middleware.CSRFHeaderName); token != "" {
		e.csrfToken = token
	}
	for _, c := range resp.Cookies() {
		switch c.Name {
		case middleware.CSRFCookieName:
			e.csrfCookie = &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
		case e.Config.Auth.Session.CookieName:
			if c.MaxAge < 0 || c.Value == "" {
				e.sessionCookie = nil
				continue
			}
			e.sessionCookie = &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
		}
	}
}

func requiresCSRFAttestation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
