// Package db opens the shared gorm connection pool and migrates the schema.
// The pool is created once at process start and injected into every
// component, nothing in the code base opens its own connection.
package db

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/enterprise-suite/authgate/internal/config"
	"github.com/enterprise-suite/authgate/internal/db/dsn"
	"github.com/enterprise-suite/authgate/internal/db/models"
	"github.com/enterprise-suite/authgate/internal/logger/adapter/stdlogger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open connects to the configured engine.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	source := dsn.Create(cfg)

	switch cfg.DB.Engine {
	case config.EngineMySQL:
		dialector = mysql.Open(source)
	case config.EnginePostgres:
		dialector = postgres.Open(source)
	case config.EngineSQLite:
		dialector = sqlite.Open(source)
	default:
		return nil, config.ErrDBEngineUnsupported
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewLogger(cfg.DB.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s database: %w", cfg.DB.Engine, err)
	}

	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// NewLogger returns a gorm logger writing through zerolog.
func NewLogger(level string) gormlogger.Interface {
	return gormlogger.New(
		stdlogger.NewWithComponent("gorm"),
		gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  parseLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
