package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the console's local journal: audit entries, export history and the
// Sheets publish queue.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
	now    func() time.Time
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db, err := FromSQL(sqlDB, logger)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	db.logger.Info().Str("path", path).Msg("journal database initialized")
	return db, nil
}

// FromSQL wraps an open handle and creates the schema.
func FromSQL(sqlDB *sql.DB, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if err := createTables(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &DB{DB: sqlDB, logger: logger, now: utcNow}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS audit_log (
            id TEXT PRIMARY KEY,
            resource TEXT NOT NULL,
            record_id TEXT,
            action TEXT NOT NULL,
            detail TEXT,
            actor TEXT,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS export_log (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            entity TEXT NOT NULL,
            format TEXT NOT NULL,
            path TEXT,
            rows INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            published_at DATETIME
        )`,
		`CREATE TABLE IF NOT EXISTS publish_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            export_id INTEGER NOT NULL,
            entity TEXT NOT NULL,
            path TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_log(resource, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_export_entity ON export_log(entity)`,
		`CREATE INDEX IF NOT EXISTS idx_publish_status ON publish_queue(status, next_retry_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Timestamps are stored in UTC so text comparisons in SQL order correctly.
func utcNow() time.Time {
	return time.Now().UTC()
}
