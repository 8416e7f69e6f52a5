package app

import (
	"time"

	"github.com/ichwanardi/portfolio/internal/auth"
)

const (
	defaultLoginAttempts = 5
	defaultLoginWindow   = 15 * time.Minute
)

// AdminCredentials converts the admin block into authenticator credentials.
func (c AuthConfig) AdminCredentials() auth.AdminCredentials {
	return auth.AdminCredentials{
		Username:     c.Admin.Username,
		Password:     c.Admin.Password,
		PasswordHash: c.Admin.PasswordHash,
	}
}

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.Session.TTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}

	return auth.JWTConfig{
		Secret:   c.JWT.Secret,
		Issuer:   c.JWT.Issuer,
		TokenTTL: ttl,
	}
}

// SessionServiceConfig converts AuthConfig into SessionService parameters. The
// session cache is attached by the caller once the cache store is known.
func (c AuthConfig) SessionServiceConfig() auth.SessionConfig {
	ttl := c.Session.TTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	cacheTTL := c.Session.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = auth.DefaultSessionCacheTTL
	}

	return auth.SessionConfig{
		TTL:      ttl,
		CacheTTL: cacheTTL,
	}
}

// LoginLimit returns the login attempt budget and its window.
func (c AuthConfig) LoginLimit() (int, time.Duration) {
	attempts := c.Login.MaxAttempts
	if attempts <= 0 {
		attempts = defaultLoginAttempts
	}
	window := c.Login.Window
	if window <= 0 {
		window = defaultLoginWindow
	}
	return attempts, window
}
