// Package postgres contains PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grantlemons/expenser/internal/errs"
)

// PgxPool is a minimal abstraction over a Postgres connection pool,
// used by repositories. It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	// Exec executes a SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// Query executes a SELECT and returns a rows iterator.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	// QueryRow executes a query expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// BeginTx starts a transaction with the provided options.
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	// Ping checks that a connection can be acquired and used.
	Ping(ctx context.Context) error
	// Close shuts down the pool and frees resources.
	Close()
}

// DB is the connection handle threaded through every repository constructor.
// Each repository call checks a connection out of Pool for one statement or transaction.
type DB struct{ Pool PgxPool }

// Options tune the pool created by New. Zero values keep pgxpool defaults.
type Options struct {
	MaxConns int32
}

// New creates a connection pool for the given DSN and verifies it with a ping.
func New(ctx context.Context, dsn string, opts Options) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, mapErr(err)
	}
	return &DB{Pool: pool}, nil
}

// Ready reports whether the store is reachable.
func (db *DB) Ready(ctx context.Context) error { return mapErr(db.Pool.Ping(ctx)) }

// Close closes the underlying pool.
func (db *DB) Close() { db.Pool.Close() }

// inTx runs fn inside a transaction; fn's error rolls it back.
func (db *DB) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return mapErr(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = mapErr(e)
		}
	}()
	return fn(tx)
}

// MapErr exposes the error translation to stores sharing the DB handle outside this package.
func MapErr(err error) error { return mapErr(err) }

// mapErr translates pgx/pgconn failures into the errs taxonomy.
// Context cancellation is passed through untouched.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return errs.ErrNotFound
	}

	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		switch {
		case pg.Code == "23505":
			return fmt.Errorf("%w: %s", errs.ErrAlreadyExists, pg.ConstraintName)
		case pg.Code == "23503", pg.Code == "23502", pg.Code == "23514":
			return fmt.Errorf("%w: %s", errs.ErrConstraint, pg.ConstraintName)
		case strings.HasPrefix(pg.Code, "08"), strings.HasPrefix(pg.Code, "53"), strings.HasPrefix(pg.Code, "57P"):
			return fmt.Errorf("%w: %s", errs.ErrUnavailable, pg.Message)
		}
		return fmt.Errorf("%w: %w", errs.ErrStore, err)
	}

	var ce *pgconn.ConnectError
	if errors.As(err, &ce) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", errs.ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %w", errs.ErrStore, err)
}

// mapWriteErr is mapErr for UPDATE/DELETE ... RETURNING, where no row means nothing was affected.
func mapWriteErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNoRowsAffected
	}
	return mapErr(err)
}

// collect drains rows through scan. The result is never nil.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// execCount runs a bulk statement and returns the affected row count.
func execCount(ctx context.Context, q interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}, sql string, args ...any) (int64, error) {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}
