package infra

import (
	"errors"
	"fmt"

	"github.com/amirasaad/bank/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrMissingDatabaseURL is returned when no DSN is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

// NewDBConnection opens the postgres pool backing the account store.
// Statements are echoed in development or when DATABASE_LOG_SQL is set.
func NewDBConnection(cnf *config.DB, appEnv string) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, ErrMissingDatabaseURL
	}

	level := logger.Silent
	if cnf.LogSQL || appEnv == "development" {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cnf.Url), &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// Balance mutations run inside explicit units of work.
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	if cnf.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cnf.MaxOpenConns)
	}
	if cnf.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cnf.MaxIdleConns)
	}
	if cnf.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(cnf.ConnMaxLifetime)
	}
	return db, nil
}
