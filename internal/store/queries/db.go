// Package queries holds the hand-written prepared-statement wrappers for
// marlin's schema, in the shape a generated sqlc package would take:
// a DBTX abstraction, a Queries struct built over it, and a WithTx method
// for running the same queries inside a transaction.
package queries

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries wraps a DBTX and exposes one method per prepared statement.
type Queries struct {
	db DBTX
}

// New constructs a Queries helper around the given DB handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of the Queries helper scoped to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
