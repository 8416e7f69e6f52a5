package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// postgresDefaults pins the session zone so published dates read back in UTC
// and tags connections for pg_stat_activity.
var postgresDefaults = map[string]string{
	"application_name": "portfolio",
	"sslmode":          "disable",
	"TimeZone":         "UTC",
}

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn}), gormConfig())
}

func buildPostgresDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("postgres configuration requires user and database name")
	}

	params := []string{
		"host=" + valueOr(cfg.Host, "localhost"),
		fmt.Sprintf("port=%d", portOr(cfg.Port, 5432)),
		"user=" + cfg.User,
		"dbname=" + cfg.Name,
	}
	if cfg.Password != "" {
		params = append(params, "password="+cfg.Password)
	}
	for _, kv := range mergeOptions(postgresDefaults, cfg.Options) {
		params = append(params, kv[0]+"="+kv[1])
	}
	return strings.Join(params, " "), nil
}
