package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
	require.EqualError(t, err, "jwt: secret must be provided")
}

func TestGenerateAndValidateToken(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{
		Secret:   "super-secret",
		Issuer:   "portfolio",
		TokenTTL: time.Hour,
		Clock:    now,
	})
	require.NoError(t, err)

	token, err := svc.GenerateToken(TokenInput{Username: "admin", SessionID: "session-456"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	require.Equal(t, "admin", claims.Username)
	require.Equal(t, "session-456", claims.SessionID)
	require.Equal(t, "session-456", claims.ID)
	require.Equal(t, "portfolio", claims.Issuer)
	require.True(t, claims.IssuedAt.Time.Equal(current))
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))
}

func TestGenerateTokenRequiresSession(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "s"})
	require.NoError(t, err)

	_, err = svc.GenerateToken(TokenInput{Username: "admin"})
	require.EqualError(t, err, "jwt: session id is required")
	_, err = svc.GenerateToken(TokenInput{SessionID: "x"})
	require.EqualError(t, err, "jwt: username is required")
}

func TestValidateTokenInvalidSignature(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC) }

	issuer, err := NewJWTService(JWTConfig{Secret: "issuer-secret", TokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	token, err := issuer.GenerateToken(TokenInput{Username: "admin", SessionID: "s1"})
	require.NoError(t, err)

	verifier, err := NewJWTService(JWTConfig{Secret: "other-secret", TokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestValidateTokenExpired(t *testing.T) {
	current := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{Secret: "secret", TokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	token, err := svc.GenerateToken(TokenInput{Username: "admin", SessionID: "s1"})
	require.NoError(t, err)

	// Move time forward beyond expiry.
	current = current.Add(2 * time.Minute)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	a, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "a"})
	require.NoError(t, err)
	b, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "b"})
	require.NoError(t, err)

	token, err := a.GenerateToken(TokenInput{Username: "admin", SessionID: "s1"})
	require.NoError(t, err)
	_, err = b.ValidateToken(token)
	require.EqualError(t, err, "jwt: invalid issuer")
}
