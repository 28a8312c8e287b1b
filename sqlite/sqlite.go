// Package sqlite implements chatflow.KV on SQLite.
//
// It expects an *sql.DB opened with a SQLite driver; Open uses modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/meikuraledutech/chatflow"
)

// KV is a chatflow.KV stored in a SQLite table.
type KV struct {
	db *sql.DB
}

var _ chatflow.KV = (*KV)(nil)

// Open opens the database at path (":memory:" works) and prepares the schema.
func Open(path string) (*KV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("chatflow: open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	kv, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv, nil
}

// New initializes the schema in db and returns a KV on it.
func New(db *sql.DB) (*KV, error) {
	kv := &KV{db: db}
	if err := kv.initSchema(); err != nil {
		return nil, err
	}
	return kv, nil
}

func (s *KV) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS chatflow_kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	)
	if err != nil {
		return fmt.Errorf("chatflow: init sqlite schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *KV) Close() error {
	return s.db.Close()
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM chatflow_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("chatflow: get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chatflow_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("chatflow: set %s: %w", key, err)
	}
	return nil
}
