package core

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type (
	// DBQueryer is satisfied by both *sqlx.DB and *sqlx.Tx.
	DBQueryer interface {
		sqlx.QueryerContext
		sqlx.ExecerContext

		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		Rebind(query string) string
	}

	DB interface {
		DBQueryer

		PingContext(ctx context.Context) error
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		Close() error
	}
)

var (
	_ DB        = (*sqlx.DB)(nil)
	_ DBQueryer = (*sqlx.Tx)(nil)
)
