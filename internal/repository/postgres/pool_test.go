package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/grantlemons/expenser/internal/errs"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return &DB{Pool: mock}, mock
}

func TestMapErr(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, errs.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}, errs.ErrAlreadyExists},
		{"foreign key", &pgconn.PgError{Code: "23503"}, errs.ErrConstraint},
		{"not null", &pgconn.PgError{Code: "23502"}, errs.ErrConstraint},
		{"connection", &pgconn.PgError{Code: "08006"}, errs.ErrUnavailable},
		{"too many connections", &pgconn.PgError{Code: "53300"}, errs.ErrUnavailable},
		{"shutdown", &pgconn.PgError{Code: "57P01"}, errs.ErrUnavailable},
		{"syntax", &pgconn.PgError{Code: "42601"}, errs.ErrStore},
		{"other", errors.New("boom"), errs.ErrStore},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, mapErr(tc.in), tc.want)
		})
	}

	require.NoError(t, mapErr(nil))
	require.Equal(t, context.Canceled, mapErr(context.Canceled))
	require.ErrorIs(t, mapErr(fmt.Errorf("query: %w", context.DeadlineExceeded)), context.DeadlineExceeded)

	boom := errors.New("disk on fire")
	require.ErrorIs(t, mapErr(boom), boom, "cause is kept")
}

func TestMapWriteErr(t *testing.T) {
	err := mapWriteErr(pgx.ErrNoRows)
	require.ErrorIs(t, err, errs.ErrNoRowsAffected)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NotErrorIs(t, mapErr(pgx.ErrNoRows), errs.ErrNoRowsAffected)
}

func TestDB_Ready(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing().WillReturnError(&pgconn.PgError{Code: "08001"})
	require.ErrorIs(t, db.Ready(context.Background()), errs.ErrUnavailable)
}
