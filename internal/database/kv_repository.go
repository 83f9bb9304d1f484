package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// KVRepository is the database-backed key-value store behind the topic cache
type KVRepository struct {
	db *sqlx.DB
}

// NewKVRepository creates a new repository instance
func NewKVRepository(db *sqlx.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key; ok is false when the key is absent
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	query := r.db.Rebind("SELECT cache_value FROM kv_store WHERE cache_key = ?")
	err := r.db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set inserts or overwrites the value stored under key
func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	query := r.db.Rebind(`
		INSERT INTO kv_store (cache_key, cache_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (cache_key) DO UPDATE SET
			cache_value = excluded.cache_value,
			updated_at = excluded.updated_at
	`)
	if _, err := r.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
