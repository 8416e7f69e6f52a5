package app

import (
	"strings"

	"github.com/ichwanardi/portfolio/internal/database"
)

// DatabaseOptions converts the database section into database.Config, picking the
// host block that matches the driver.
func (c DatabaseConfig) DatabaseOptions() database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:   strings.TrimSpace(c.Path),
		DSN:    strings.TrimSpace(c.DSN),
	}

	var block DBAuthConfig
	switch dbCfg.Driver {
	case "", "sqlite", "sqlite3":
		dbCfg.Driver = "sqlite"
		return dbCfg
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		block = c.Postgres
	case "mysql", "mariadb":
		dbCfg.Driver = "mysql"
		block = c.MySQL
	default:
		// Unsupported drivers are reported by database.Open.
		return dbCfg
	}

	dbCfg.Host = strings.TrimSpace(block.Host)
	dbCfg.Port = block.Port
	dbCfg.Name = strings.TrimSpace(block.Database)
	dbCfg.User = strings.TrimSpace(block.Username)
	dbCfg.Password = block.Password
	return dbCfg
}
