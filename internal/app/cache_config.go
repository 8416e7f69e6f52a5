package app

import (
	"strings"

	"github.com/ichwanardi/portfolio/internal/cache"
)

// Cache store drivers accepted by cache.driver.
const (
	CacheDriverRedis    = "redis"
	CacheDriverDatabase = "database"
	CacheDriverMemory   = "memory"
	CacheDriverNone     = "none"
)

// NormalisedDriver lower-cases the driver and maps empty to database.
func (c CacheConfig) NormalisedDriver() string {
	driver := strings.ToLower(strings.TrimSpace(c.Driver))
	if driver == "" {
		return CacheDriverDatabase
	}
	return driver
}

// RedisClientConfig converts the application cache configuration into the cache package representation.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:   strings.TrimSpace(c.Redis.Address),
		Username:  strings.TrimSpace(c.Redis.Username),
		Password:  c.Redis.Password,
		DB:        c.Redis.DB,
		TLS:       c.Redis.TLS,
		Timeout:   c.Redis.Timeout,
		KeyPrefix: c.Redis.KeyPrefix,
	}
}

// AccessorOptions returns the cache-aside tuning from config.
func (c CacheConfig) AccessorOptions() []cache.AccessorOption {
	if c.OperationTimeout <= 0 {
		return nil
	}
	return []cache.AccessorOption{cache.WithOperationTimeout(c.OperationTimeout)}
}
