package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Schema names one of the two independent service databases.
type Schema string

const (
	SchemaClinician Schema = "clinician"
	SchemaPatient   Schema = "patient"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
)

// Open connects to dsn and applies the embedded migrations for schema.
// A postgres:// or postgresql:// URL selects Postgres, anything else is a SQLite file path.
func Open(dsn string, schema Schema) (*gorm.DB, error) {
	trimmed := strings.Trim(strings.TrimSpace(dsn), `"'`)
	if trimmed == "" {
		return nil, errors.New("database dsn is required")
	}
	if isPostgresDSN(trimmed) {
		return OpenPostgres(trimmed, schema)
	}
	return OpenSQLite(trimmed, schema)
}

func OpenSQLite(dbPath string, schema Schema) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyEmbeddedMigrations(database, dialectSQLite, schema); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}
	return database, nil
}

func OpenPostgres(dsn string, schema Schema) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := database.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if err := applyEmbeddedMigrations(database, dialectPostgres, schema); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}
	return database, nil
}

func newGormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

func isPostgresDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// Close releases the underlying connection pool.
func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
