package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/ichwanardi/portfolio/internal/auth"
	"github.com/ichwanardi/portfolio/internal/middleware"
	appErrors "github.com/ichwanardi/portfolio/pkg/errors"
	"github.com/ichwanardi/portfolio/pkg/logger"
	"github.com/ichwanardi/portfolio/pkg/metrics"
	"github.com/ichwanardi/portfolio/pkg/response"
)

// AuthHandler manages the admin login flow (login/logout/me).
type AuthHandler struct {
	authenticator *iauth.Authenticator
	sessions      *iauth.SessionService
	cookieName    string
}

// NewAuthHandler wires the auth handler. An empty cookieName uses the default cookie.
func NewAuthHandler(authenticator *iauth.Authenticator, sessions *iauth.SessionService, cookieName string) *AuthHandler {
	if cookieName == "" {
		cookieName = middleware.DefaultSessionCookieName
	}
	return &AuthHandler{authenticator: authenticator, sessions: sessions, cookieName: cookieName}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

type sessionPayload struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.authenticator.Authenticate(req.Username, req.Password); err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		logger.WithModule("auth").Warn("admin login rejected",
			zap.String("username", strings.TrimSpace(req.Username)),
			zap.String("client_ip", c.ClientIP()),
		)
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	token, session, err := h.sessions.Create(requestContext(c), h.authenticator.Username(), iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		logger.WithModule("auth").Error("create admin session", zap.Error(err))
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	middleware.SetSessionCookie(c, h.cookieName, token, int(h.sessions.TTL().Seconds()))
	response.Success(c, http.StatusOK, sessionPayload{Username: session.Username, ExpiresAt: session.ExpiresAt})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.cookieName)

	token, err := c.Cookie(h.cookieName)
	if err != nil || token == "" {
		response.Success(c, http.StatusOK, gin.H{"loggedOut": true})
		return
	}

	claims, _, err := h.sessions.Validate(requestContext(c), token)
	if err == nil {
		if err := h.sessions.Revoke(requestContext(c), claims.SessionID); err != nil && !errors.Is(err, iauth.ErrSessionNotFound) {
			logger.WithModule("auth").Error("revoke admin session", zap.Error(err))
		}
	}
	response.Success(c, http.StatusOK, gin.H{"loggedOut": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	token, err := c.Cookie(h.cookieName)
	if err != nil || token == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	_, session, err := h.sessions.Validate(requestContext(c), token)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, sessionPayload{Username: session.Username, ExpiresAt: session.ExpiresAt})
}
