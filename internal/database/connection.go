package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Options selects the database the local repositories live in
type Options struct {
	Type        string // sqlite or postgres
	Path        string // sqlite file
	DatabaseURL string // postgres DSN
}

// Connect opens the database and makes sure the schema exists
func Connect(opts Options) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch opts.Type {
	case "postgres":
		db, err = sqlx.Connect("postgres", opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	case "sqlite", "":
		if dir := filepath.Dir(opts.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = sqlx.Connect("sqlite3", opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return nil, fmt.Errorf("unsupported database type %q", opts.Type)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	// Create kv_store table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			cache_key TEXT PRIMARY KEY,
			cache_value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}

	// Create user_metadata table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_metadata (
			user_id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL DEFAULT '',
			daily_goal INTEGER NOT NULL DEFAULT 0,
			progress_date TEXT NOT NULL DEFAULT '',
			progress_count INTEGER NOT NULL DEFAULT 0,
			streak_count INTEGER NOT NULL DEFAULT 0,
			streak_last_date TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_metadata table: %w", err)
	}

	// Create study_sessions table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS study_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			certification TEXT NOT NULL,
			topic_title TEXT NOT NULL DEFAULT '',
			result_display TEXT NOT NULL DEFAULT '',
			is_success BOOLEAN NOT NULL DEFAULT false,
			score_achieved REAL NOT NULL DEFAULT 0,
			score_total INTEGER NOT NULL DEFAULT 0,
			review_feedback TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create study_sessions table: %w", err)
	}

	return nil
}
