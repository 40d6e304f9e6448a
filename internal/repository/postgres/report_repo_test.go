package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/model"
)

var reportColumns = []string{"id", "owner_id", "title", "description"}

func strPtr(s string) *string { return &s }

func TestReportRepo_Insert(t *testing.T) {
	db, mock := newDB(t)
	r := NewReportRepo(db)
	ctx := context.Background()
	const q = `INSERT INTO reports \(owner_id, title, description\) VALUES \(\$1, \$2, \$3\) RETURNING id, owner_id, title, description`

	mock.ExpectQuery(q).
		WithArgs(int64(1), "Trip", (*string)(nil)).
		WillReturnRows(pgxmock.NewRows(reportColumns).AddRow(int64(1), int64(1), "Trip", nil))
	rp, err := r.Insert(ctx, model.NewReport{OwnerID: 1, Title: "Trip"})
	require.NoError(t, err)
	require.Equal(t, model.Report{ID: 1, OwnerID: 1, Title: "Trip"}, rp)

	// unknown owner
	mock.ExpectQuery(q).
		WithArgs(int64(42), "Trip", (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "reports_owner_id_fkey"})
	_, err = r.Insert(ctx, model.NewReport{OwnerID: 42, Title: "Trip"})
	require.ErrorIs(t, err, errs.ErrConstraint)
}

func TestReportRepo_GetByID_WithDescription(t *testing.T) {
	db, mock := newDB(t)
	r := NewReportRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, owner_id, title, description FROM reports WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(reportColumns).AddRow(int64(1), int64(1), "Trip", strPtr("Berlin")))
	rp, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, rp.Description)
	require.Equal(t, "Berlin", *rp.Description)

	mock.ExpectQuery(`FROM reports WHERE id=\$1`).WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, 2)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReportRepo_GetByOwner(t *testing.T) {
	db, mock := newDB(t)
	r := NewReportRepo(db)
	ctx := context.Background()
	const q = `FROM reports WHERE owner_id=\$1 ORDER BY id ASC`

	mock.ExpectQuery(q).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(reportColumns).
			AddRow(int64(1), int64(1), "Trip", nil).
			AddRow(int64(3), int64(1), "Lunch", strPtr("team")))
	got, err := r.GetByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(3), got[1].ID)

	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnRows(pgxmock.NewRows(reportColumns))
	got, err = r.GetByOwner(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	mock.ExpectQuery(q).WithArgs(int64(8)).WillReturnError(&pgconn.PgError{Code: "53300"})
	_, err = r.GetByOwner(ctx, 8)
	require.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestReportRepo_Updates(t *testing.T) {
	db, mock := newDB(t)
	r := NewReportRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`UPDATE reports SET owner_id=\$2, title=\$3, description=\$4 WHERE id=\$1`).
		WithArgs(int64(1), int64(1), "Trip 2", strPtr("d")).
		WillReturnRows(pgxmock.NewRows(reportColumns).AddRow(int64(1), int64(1), "Trip 2", strPtr("d")))
	rp, err := r.Replace(ctx, 1, model.NewReport{OwnerID: 1, Title: "Trip 2", Description: strPtr("d")})
	require.NoError(t, err)
	require.Equal(t, "Trip 2", rp.Title)

	mock.ExpectQuery(`UPDATE reports SET title=\$2 WHERE id=\$1`).
		WithArgs(int64(1), "Renamed").
		WillReturnRows(pgxmock.NewRows(reportColumns).AddRow(int64(1), int64(1), "Renamed", nil))
	rp, err = r.UpdateTitle(ctx, 1, "Renamed")
	require.NoError(t, err)
	require.Equal(t, "Renamed", rp.Title)

	mock.ExpectQuery(`UPDATE reports SET description=\$2 WHERE id=\$1`).
		WithArgs(int64(9), (*string)(nil)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.UpdateDescription(ctx, 9, nil)
	require.ErrorIs(t, err, errs.ErrNoRowsAffected)
}

func expectCascade(mock pgxmock.PgxPoolIface, id int64, items, proofs, grants int64) {
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM report_line_items WHERE report_id=\$1`).
		WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", items))
	mock.ExpectExec(`DELETE FROM report_proof WHERE report_id=\$1`).
		WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", proofs))
	mock.ExpectExec(`DELETE FROM report_access WHERE report_id=\$1`).
		WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", grants))
}

func TestReportRepo_Delete_Cascades(t *testing.T) {
	db, mock := newDB(t)
	r := NewReportRepo(db)

	expectCascade(mock, 1, 3, 2, 1)
	mock.ExpectQuery(`DELETE FROM reports WHERE id=\$1 RETURNING`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(reportColumns).AddRow(int64(1), int64(1), "Trip", nil))
	mock.ExpectCommit()

	rp, err := r.Delete(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), rp.ID)
}

func TestReportRepo_Delete_NotFound_RollsBack(t *testing.T) {
	db, mock := newDB(t)
	r := NewReportRepo(db)

	expectCascade(mock, 5, 0, 0, 0)
	mock.ExpectQuery(`DELETE FROM reports WHERE id=\$1 RETURNING`).
		WithArgs(int64(5)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	rp, err := r.Delete(context.Background(), 5)
	require.ErrorIs(t, err, errs.ErrNoRowsAffected)
	require.Equal(t, model.Report{}, rp)
}

func TestReportRepo_Delete_ChildFailure_RollsBack(t *testing.T) {
	db, mock := newDB(t)
	r := NewReportRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM report_line_items WHERE report_id=\$1`).
		WithArgs(int64(1)).
		WillReturnError(errors.New("io"))
	mock.ExpectRollback()

	_, err := r.Delete(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrStore)
}

func TestReportRepo_Delete_BeginFails(t *testing.T) {
	db, mock := newDB(t)
	r := NewReportRepo(db)

	mock.ExpectBegin().WillReturnError(&pgconn.PgError{Code: "08003"})
	_, err := r.Delete(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestReportRepo_Clear(t *testing.T) {
	db, mock := newDB(t)
	r := NewReportRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM report_line_items`).WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectExec(`DELETE FROM report_proof`).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM report_access`).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM reports`).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	n, err := r.Clear(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}
