package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const createBlobsTable = `
	CREATE TABLE IF NOT EXISTS storefront_blobs (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// PostgresStore persists values in a single key/JSONB table
type PostgresStore struct {
	db     *sqlx.DB
	prefix string
}

// NewPostgresStore connects to the database and ensures the blob table exists
func NewPostgresStore(databaseURL, prefix string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(createBlobsTable); err != nil {
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}

	return &PostgresStore{db: db, prefix: prefix}, nil
}

func (s *PostgresStore) key(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *PostgresStore) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw,
		"SELECT value FROM storefront_blobs WHERE key = $1", s.key(key))
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// malformed payload is treated as absence
		return false, nil
	}
	return true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO storefront_blobs (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		s.key(key), raw)
	if err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM storefront_blobs WHERE key = $1", s.key(key))
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
