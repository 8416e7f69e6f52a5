package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ichwanardi/portfolio/internal/auth"
	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/database"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "https://example.dev", cfg.Server.SiteURL)
	require.Equal(t, []string{"https://example.dev", "https://admin.example.dev"}, cfg.Server.CORSOrigins)
	require.Equal(t, 30, cfg.Server.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)
	require.Equal(t, 120*time.Second, cfg.Server.HTTPCache.MaxAge)
	require.Equal(t, 10*time.Minute, cfg.Server.HTTPCache.StaleWhileRevalidate)
	require.True(t, cfg.Server.CSRF.Enabled)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 3*time.Second, cfg.Database.QueryTimeout)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)

	require.Equal(t, CacheDriverRedis, cfg.Cache.NormalisedDriver())
	require.Equal(t, 250*time.Millisecond, cfg.Cache.OperationTimeout)
	require.False(t, cfg.Cache.InvalidateOnWrite)
	require.Equal(t, "redis.example.com:6380", cfg.Cache.Redis.Address)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.Equal(t, 2*time.Second, cfg.Cache.Redis.Timeout)

	require.Equal(t, "owner", cfg.Auth.Admin.Username)
	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 6*time.Hour, cfg.Auth.Session.TTL)
	require.Equal(t, "example_session", cfg.Auth.Session.CookieName)

	require.Equal(t, "@every 5m", cfg.Maintenance.CacheSchedule)
	require.Equal(t, "@hourly", cfg.Maintenance.SessionSchedule)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, CacheDriverDatabase, cfg.Cache.NormalisedDriver())
	require.Equal(t, 500*time.Millisecond, cfg.Cache.OperationTimeout)
	require.True(t, cfg.Cache.InvalidateOnWrite)
	require.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	require.Equal(t, 12*time.Hour, cfg.Auth.Session.TTL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PORTFOLIO_SERVER_PORT", "7070")
	t.Setenv("PORTFOLIO_CACHE_DRIVER", "none")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, CacheDriverNone, cfg.Cache.NormalisedDriver())
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := AuthConfig{
		Admin:   AdminSettings{Username: "admin", Password: "pw"},
		JWT:     JWTSettings{Secret: "secret", Issuer: "issuer"},
		Session: SessionSettings{TTL: 2 * time.Hour, CacheTTL: time.Minute},
		Login:   LoginSettings{MaxAttempts: 4, Window: time.Minute},
	}

	require.Equal(t, auth.AdminCredentials{Username: "admin", Password: "pw"}, cfg.AdminCredentials())
	require.Equal(t, auth.JWTConfig{Secret: "secret", Issuer: "issuer", TokenTTL: 2 * time.Hour}, cfg.JWTServiceConfig())
	require.Equal(t, auth.SessionConfig{TTL: 2 * time.Hour, CacheTTL: time.Minute}, cfg.SessionServiceConfig())

	attempts, window := cfg.LoginLimit()
	require.Equal(t, 4, attempts)
	require.Equal(t, time.Minute, window)
}

func TestAuthConfigAdaptersFallback(t *testing.T) {
	var cfg AuthConfig

	require.Equal(t, auth.DefaultSessionTTL, cfg.JWTServiceConfig().TokenTTL)
	require.Equal(t, auth.DefaultSessionTTL, cfg.SessionServiceConfig().TTL)
	require.Equal(t, auth.DefaultSessionCacheTTL, cfg.SessionServiceConfig().CacheTTL)

	attempts, window := cfg.LoginLimit()
	require.Equal(t, defaultLoginAttempts, attempts)
	require.Equal(t, defaultLoginWindow, window)
}

func TestCacheConfigAdapters(t *testing.T) {
	cfg := CacheConfig{
		Driver:           " Redis ",
		OperationTimeout: time.Second,
		Redis:            RedisCacheConfig{Address: " 127.0.0.1:6379 ", KeyPrefix: "p:"},
	}

	require.Equal(t, CacheDriverRedis, cfg.NormalisedDriver())
	require.Equal(t, cache.RedisConfig{Address: "127.0.0.1:6379", KeyPrefix: "p:"}, cfg.RedisClientConfig())
	require.Len(t, cfg.AccessorOptions(), 1)
	require.Empty(t, CacheConfig{}.AccessorOptions())
}

func TestDatabaseOptions(t *testing.T) {
	cfg := DatabaseConfig{
		Driver: "MySQL",
		MySQL:  DBAuthConfig{Host: "db", Port: 3306, Database: "site", Username: "u", Password: "p"},
	}
	require.Equal(t, database.Config{Driver: "mysql", Host: "db", Port: 3306, Name: "site", User: "u", Password: "p"}, cfg.DatabaseOptions())

	require.Equal(t, database.Config{Driver: "sqlite", Path: "x.db"}, DatabaseConfig{Path: "x.db"}.DatabaseOptions())
	require.Equal(t, "oracle", DatabaseConfig{Driver: "oracle"}.DatabaseOptions().Driver)
}
