package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql operations the task and user stores
// issue. Both *sql.DB and *sql.Tx satisfy it, so a store can run against a
// plain connection pool or inside a transaction without knowing which.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
