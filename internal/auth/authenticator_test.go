package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ichwanardi/portfolio/pkg/crypto"
)

func TestNewAuthenticatorValidation(t *testing.T) {
	_, err := NewAuthenticator(AdminCredentials{Password: "x"})
	require.EqualError(t, err, "auth: admin username is required")

	_, err = NewAuthenticator(AdminCredentials{Username: "admin"})
	require.EqualError(t, err, "auth: admin password or password hash is required")

	_, err = NewAuthenticator(AdminCredentials{Username: "admin", PasswordHash: "plain"})
	require.EqualError(t, err, "auth: admin password hash must be a bcrypt hash")
}

func TestAuthenticatePlainPassword(t *testing.T) {
	a, err := NewAuthenticator(AdminCredentials{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "admin", a.Username())

	require.NoError(t, a.Authenticate("admin", "s3cret"))
	require.NoError(t, a.Authenticate(" admin ", "s3cret"))
	require.ErrorIs(t, a.Authenticate("admin", "wrong"), ErrInvalidCredentials)
	require.ErrorIs(t, a.Authenticate("root", "s3cret"), ErrInvalidCredentials)
}

func TestAuthenticateBcryptHash(t *testing.T) {
	hash, err := crypto.HashPassword("hunter2")
	require.NoError(t, err)

	a, err := NewAuthenticator(AdminCredentials{Username: "admin", Password: "ignored", PasswordHash: hash})
	require.NoError(t, err)

	require.NoError(t, a.Authenticate("admin", "hunter2"))
	require.ErrorIs(t, a.Authenticate("admin", "ignored"), ErrInvalidCredentials)
}
