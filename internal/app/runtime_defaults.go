package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ichwanardi/portfolio/pkg/crypto"
)

const jwtSecretBytes = 48

// ApplyRuntimeDefaults fills secrets that must exist for the process to run. It
// returns the keys it generated so callers can log them without the values.
// A generated JWT secret does not survive a restart, so sessions end with the process.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	generated := make(map[string]bool)

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		secret, err := crypto.GenerateToken(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.Auth.JWT.Secret = secret
		generated["auth.jwt.secret"] = true
	}

	return generated, nil
}

// Validate reports configuration that cannot be served.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Auth.JWT.Secret) == "" {
		return errors.New("auth.jwt.secret must be configured")
	}
	if strings.TrimSpace(c.Auth.Admin.Password) == "" && strings.TrimSpace(c.Auth.Admin.PasswordHash) == "" {
		return errors.New("auth.admin.password or auth.admin.password_hash must be configured")
	}
	switch c.Cache.NormalisedDriver() {
	case CacheDriverRedis, CacheDriverDatabase, CacheDriverMemory, CacheDriverNone:
	default:
		return fmt.Errorf("cache.driver %q is not supported", c.Cache.Driver)
	}
	return nil
}
