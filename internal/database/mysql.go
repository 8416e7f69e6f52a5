package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Content dates are written in UTC; loc=UTC keeps parseTime from shifting them
// into the server's zone.
var mysqlDefaults = map[string]string{
	"charset":   "utf8mb4",
	"loc":       "UTC",
	"parseTime": "True",
}

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.New(mysql.Config{DSN: dsn, DefaultStringSize: 255}), gormConfig())
}

func buildMySQLDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	user := cfg.User
	if cfg.Password != "" {
		user += ":" + cfg.Password
	}

	merged := mergeOptions(mysqlDefaults, cfg.Options)
	opts := make([]string, 0, len(merged))
	for _, kv := range merged {
		opts = append(opts, kv[0]+"="+kv[1])
	}

	host := valueOr(cfg.Host, "127.0.0.1")
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s", user, host, portOr(cfg.Port, 3306), cfg.Name, strings.Join(opts, "&")), nil
}
