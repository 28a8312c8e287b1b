package postgres

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS chatflow_kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// CreateSchema creates the chatflow_kv table if it doesn't exist.
func (s *KV) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("chatflow: create schema: %w", err)
	}
	return nil
}

// DropSchema drops the chatflow_kv table.
func (s *KV) DropSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS chatflow_kv`); err != nil {
		return fmt.Errorf("chatflow: drop schema: %w", err)
	}
	return nil
}
