package auth

import (
	"errors"
	"strings"

	"github.com/ichwanardi/portfolio/pkg/crypto"
)

// ErrInvalidCredentials is returned when the supplied username/password pair is invalid.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// AdminCredentials is the single admin account configured for the site.
// PasswordHash (bcrypt) takes precedence over Password when both are set.
type AdminCredentials struct {
	Username     string
	Password     string
	PasswordHash string
}

// Authenticator checks login attempts against the configured admin account.
type Authenticator struct {
	username string
	password string
	hash     string
}

// NewAuthenticator validates the configured credentials.
func NewAuthenticator(creds AdminCredentials) (*Authenticator, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" {
		return nil, errors.New("auth: admin username is required")
	}
	hash := strings.TrimSpace(creds.PasswordHash)
	if hash != "" && !crypto.IsBcryptHash(hash) {
		return nil, errors.New("auth: admin password hash must be a bcrypt hash")
	}
	if hash == "" && creds.Password == "" {
		return nil, errors.New("auth: admin password or password hash is required")
	}

	return &Authenticator{username: username, password: creds.Password, hash: hash}, nil
}

// Username returns the configured admin username.
func (a *Authenticator) Username() string {
	return a.username
}

// Authenticate compares both fields without short-circuiting on the username.
func (a *Authenticator) Authenticate(username, password string) error {
	userOK := crypto.SecureCompare(strings.TrimSpace(username), a.username)

	var passOK bool
	if a.hash != "" {
		passOK = crypto.VerifyPassword(a.hash, password)
	} else {
		passOK = crypto.SecureCompare(password, a.password)
	}

	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
