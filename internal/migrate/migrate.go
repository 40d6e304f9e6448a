// Package migrate applies the goose SQL migrations that create the report schema.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/grantlemons/expenser/migrations"
)

// DefaultTable is the goose version table.
const DefaultTable = "expenser_schema_version"

// Options select the migration source. Zero values use the embedded schema.
type Options struct {
	FS    fs.FS
	Dir   string
	Table string
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = migrations.FS
	}
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Table == "" {
		o.Table = DefaultTable
	}
	return o
}

// Files lists the migration scripts goose would read, in name order.
func (o Options) Files() ([]string, error) {
	o = o.withDefaults()
	sub, err := fs.Sub(o.FS, o.Dir)
	if err != nil {
		return nil, err
	}
	return fs.Glob(sub, "*.sql")
}

// Up runs all pending migrations and returns the resulting schema version.
func Up(ctx context.Context, dsn string, opts Options) (int64, error) {
	opts = opts.withDefaults()
	files, err := opts.Files()
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no migrations in %q", opts.Dir)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	goose.SetBaseFS(opts.FS)
	goose.SetTableName(opts.Table)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, err
	}
	if err := goose.UpContext(ctx, db, opts.Dir); err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}
