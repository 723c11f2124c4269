package db

import (
	"context"
	"database/sql"
)

// DBTX is the query surface the snapshot repository needs. Reads such as
// list and show go straight to the *sql.DB; save and delete run on the
// *sql.Tx of a UnitOfWork.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
