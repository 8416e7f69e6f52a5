package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the portfolio backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server and the public site metadata.
type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	LogLevel        string          `mapstructure:"log_level"`
	LogFormat       string          `mapstructure:"log_format"`
	SiteURL         string          `mapstructure:"site_url"`
	SiteName        string          `mapstructure:"site_name"`
	SiteDescription string          `mapstructure:"site_description"`
	SiteImage       string          `mapstructure:"site_image"`
	CORSOrigins     []string        `mapstructure:"cors_origins"`
	RequestTimeout  time.Duration   `mapstructure:"request_timeout"`
	CSRF            CSRFConfig      `mapstructure:"csrf"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	HTTPCache       HTTPCacheConfig `mapstructure:"http_cache"`
}

// CSRFConfig controls CSRF protection on admin and auth mutations.
type CSRFConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RateLimitConfig limits public API traffic per client and route.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// HTTPCacheConfig sets the shared-cache hints sent on public reads.
type HTTPCacheConfig struct {
	MaxAge               time.Duration `mapstructure:"max_age"`
	StaleWhileRevalidate time.Duration `mapstructure:"stale_while_revalidate"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"`
	Path         string        `mapstructure:"path"`
	DSN          string        `mapstructure:"dsn"`
	Postgres     DBAuthConfig  `mapstructure:"postgres"`
	MySQL        DBAuthConfig  `mapstructure:"mysql"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	SeedSample   bool          `mapstructure:"seed_sample"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig selects and tunes the content cache store.
type CacheConfig struct {
	// Driver is one of redis, database, memory or none.
	Driver            string           `mapstructure:"driver"`
	OperationTimeout  time.Duration    `mapstructure:"operation_timeout"`
	InvalidateOnWrite bool             `mapstructure:"invalidate_on_write"`
	Redis             RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Address   string        `mapstructure:"address"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TLS       bool          `mapstructure:"tls"`
	Timeout   time.Duration `mapstructure:"timeout"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// AuthConfig captures the admin account and session settings.
type AuthConfig struct {
	Admin   AdminSettings   `mapstructure:"admin"`
	JWT     JWTSettings     `mapstructure:"jwt"`
	Session SessionSettings `mapstructure:"session"`
	Login   LoginSettings   `mapstructure:"login"`
}

// AdminSettings is the single admin credential.
type AdminSettings struct {
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"password_hash"`
}

// JWTSettings configures the signed session cookie.
type JWTSettings struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// SessionSettings configures admin session lifetimes.
type SessionSettings struct {
	TTL        time.Duration `mapstructure:"ttl"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

// LoginSettings limits login attempts per client.
type LoginSettings struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Window      time.Duration `mapstructure:"window"`
}

// MaintenanceConfig schedules background cleanup.
type MaintenanceConfig struct {
	CacheSchedule   string `mapstructure:"cache_schedule"`
	SessionSchedule string `mapstructure:"session_schedule"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig reads config.yaml from ./config and paths, then applies PORTFOLIO_* overrides.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.site_url", "")
	v.SetDefault("server.site_name", "Portfolio")
	v.SetDefault("server.site_description", "Projects, writing and updates")
	v.SetDefault("server.site_image", "")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.csrf.enabled", true)
	v.SetDefault("server.rate_limit.requests", 120)
	v.SetDefault("server.rate_limit.window", "1m")
	v.SetDefault("server.http_cache.max_age", "60s")
	v.SetDefault("server.http_cache.stale_while_revalidate", "300s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/portfolio.sqlite")
	v.SetDefault("database.query_timeout", "5s")
	v.SetDefault("database.seed_sample", false)

	v.SetDefault("cache.driver", "database")
	v.SetDefault("cache.operation_timeout", "500ms")
	v.SetDefault("cache.invalidate_on_write", true)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "2s")
	v.SetDefault("cache.redis.key_prefix", "")

	v.SetDefault("auth.admin.username", "admin")
	v.SetDefault("auth.admin.password", "")
	v.SetDefault("auth.admin.password_hash", "")
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "portfolio")
	v.SetDefault("auth.session.ttl", "12h")
	v.SetDefault("auth.session.cache_ttl", "5m")
	v.SetDefault("auth.session.cookie_name", "portfolio_session")
	v.SetDefault("auth.login.max_attempts", 5)
	v.SetDefault("auth.login.window", "15m")

	v.SetDefault("maintenance.cache_schedule", "@every 10m")
	v.SetDefault("maintenance.session_schedule", "@hourly")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
