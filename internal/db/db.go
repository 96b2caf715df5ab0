// Package db provides the local operation history database
package db

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/appian-deploy/appian-deploy/internal/db/models"
)

// Options represents database connection configuration options
type Options struct {
	// DSN is a postgres URL or key/value string, or a sqlite file path
	DSN      string
	LogLevel logger.LogLevel
}

// IsPostgresDSN reports whether dsn addresses a postgres server rather than a sqlite file
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// New opens the history database and migrates its schema
func New(opts Options) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("history database DSN cannot be empty")
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	// Configure custom logger to ignore record not found errors
	newLogger := logger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		logger.Config{
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
		},
	)

	var dialector gorm.Dialector
	if IsPostgresDSN(opts.DSN) {
		dialector = postgres.Open(opts.DSN)
	} else {
		dialector = sqlite.Open(opts.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the history tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Operation{})
}
