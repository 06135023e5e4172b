package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx that repositories run
// statements against. Methods that must participate in a caller-owned
// transaction take a Querier explicitly; everything else runs on the pool
// the repository was constructed with.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is a transaction handle. pgx.Tx satisfies it directly.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB is the database handle the services hold: plain statement execution
// plus the ability to open a transaction.
type DB interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
}

type pgxDB struct {
	*pgxpool.Pool
}

// NewDB wraps a pgx connection pool as a DB.
func NewDB(pool *pgxpool.Pool) DB {
	return &pgxDB{Pool: pool}
}

func (d *pgxDB) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
