package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meikuraledutech/chatflow"
)

// Querier is the subset of pgx both *pgxpool.Pool and pgx.Tx provide.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// KV implements chatflow.KV on a PostgreSQL table via pgx.
type KV struct {
	db Querier
}

var _ chatflow.KV = (*KV)(nil)

// New creates a KV backed by the given pgx pool or transaction.
func New(db Querier) *KV {
	return &KV{db: db}
}
