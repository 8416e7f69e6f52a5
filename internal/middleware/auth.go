package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/ichwanardi/portfolio/internal/auth"
	apperrors "github.com/ichwanardi/portfolio/pkg/errors"
	"github.com/ichwanardi/portfolio/pkg/logger"
	"github.com/ichwanardi/portfolio/pkg/response"
)

const (
	// DefaultSessionCookieName carries the signed admin session token.
	DefaultSessionCookieName = "portfolio_session"

	CtxClaimsKey    = "authClaims"
	CtxUsernameKey  = "adminUsername"
	CtxSessionIDKey = "sessionID"
)

// AdminSession requires a valid admin session cookie. The cookie value is a JWT whose
// session id must still be active in the sessions table.
func AdminSession(sessions *iauth.SessionService, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultSessionCookieName
	}

	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || strings.TrimSpace(token) == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, session, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, iauth.ErrSessionExpired), errors.Is(err, iauth.ErrSessionRevoked):
				response.Error(c, apperrors.ErrSessionExpired)
			case errors.Is(err, iauth.ErrSessionInvalidToken), errors.Is(err, iauth.ErrSessionNotFound):
				response.Error(c, apperrors.ErrUnauthorized)
			default:
				logger.WithModule("auth").Error("session validation failed", zap.Error(err))
				response.Error(c, apperrors.ErrInternalServer)
			}
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUsernameKey, session.Username)
		c.Set(CtxSessionIDKey, session.ID)

		c.Next()
	}
}

// SetSessionCookie writes the admin session cookie.
func SetSessionCookie(c *gin.Context, cookieName, token string, maxAge int) {
	if cookieName == "" {
		cookieName = DefaultSessionCookieName
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   isSecureRequest(c.Request),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the admin session cookie.
func ClearSessionCookie(c *gin.Context, cookieName string) {
	SetSessionCookie(c, cookieName, "", -1)
}
