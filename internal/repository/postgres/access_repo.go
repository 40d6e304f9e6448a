package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/grantlemons/expenser/internal/model"
)

const accessCols = `id, borrower_id, report_id, read_access, write_access`

// AccessRepo implements repository.AccessRepository and repository.AccessResolver using PostgreSQL.
type AccessRepo struct{ db *DB }

// NewAccessRepo constructs an access grant repository.
func NewAccessRepo(db *DB) *AccessRepo { return &AccessRepo{db: db} }

func scanGrant(row pgx.Row) (model.AccessGrant, error) {
	var g model.AccessGrant
	if err := row.Scan(&g.ID, &g.BorrowerID, &g.ReportID, &g.ReadAccess, &g.WriteAccess); err != nil {
		return model.AccessGrant{}, err
	}
	return g, nil
}

// Insert creates a grant. A second grant for the same (report, borrower) fails with errs.ErrAlreadyExists.
func (r *AccessRepo) Insert(ctx context.Context, ng model.NewAccessGrant) (model.AccessGrant, error) {
	const q = `
INSERT INTO report_access (borrower_id, report_id, read_access, write_access)
VALUES ($1, $2, $3, $4)
RETURNING ` + accessCols
	g, err := scanGrant(r.db.Pool.QueryRow(ctx, q, ng.BorrowerID, ng.ReportID, ng.ReadAccess, ng.WriteAccess))
	return g, mapErr(err)
}

// GetByID selects a grant by its own ID.
func (r *AccessRepo) GetByID(ctx context.Context, id int64) (model.AccessGrant, error) {
	const q = `SELECT ` + accessCols + ` FROM report_access WHERE id=$1`
	g, err := scanGrant(r.db.Pool.QueryRow(ctx, q, id))
	return g, mapErr(err)
}

// GetByPath selects a grant only if it belongs to p.ReportID.
func (r *AccessRepo) GetByPath(ctx context.Context, p model.Path) (model.AccessGrant, error) {
	const q = `SELECT ` + accessCols + ` FROM report_access WHERE report_id=$1 AND id=$2`
	g, err := scanGrant(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID))
	return g, mapErr(err)
}

// GetByReport lists the grants of a report.
func (r *AccessRepo) GetByReport(ctx context.Context, reportID int64) ([]model.AccessGrant, error) {
	const q = `SELECT ` + accessCols + ` FROM report_access WHERE report_id=$1 ORDER BY id ASC`
	return r.list(ctx, q, reportID)
}

// GetByBorrower lists the grants held by a borrower.
func (r *AccessRepo) GetByBorrower(ctx context.Context, borrowerID int64) ([]model.AccessGrant, error) {
	const q = `SELECT ` + accessCols + ` FROM report_access WHERE borrower_id=$1 ORDER BY id ASC`
	return r.list(ctx, q, borrowerID)
}

// GetForBorrower selects the borrower's grant on a report.
func (r *AccessRepo) GetForBorrower(ctx context.Context, reportID, borrowerID int64) (model.AccessGrant, error) {
	const q = `SELECT ` + accessCols + ` FROM report_access WHERE report_id=$1 AND borrower_id=$2`
	g, err := scanGrant(r.db.Pool.QueryRow(ctx, q, reportID, borrowerID))
	return g, mapErr(err)
}

func (r *AccessRepo) list(ctx context.Context, q string, arg int64) ([]model.AccessGrant, error) {
	rows, err := r.db.Pool.Query(ctx, q, arg)
	if err != nil {
		return nil, mapErr(err)
	}
	return collect(rows, scanGrant)
}

// Update overwrites every column of the grant addressed by p.
func (r *AccessRepo) Update(ctx context.Context, p model.Path, ng model.NewAccessGrant) (model.AccessGrant, error) {
	const q = `
UPDATE report_access
SET borrower_id=$3, report_id=$4, read_access=$5, write_access=$6
WHERE report_id=$1 AND id=$2
RETURNING ` + accessCols
	g, err := scanGrant(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID, ng.BorrowerID, ng.ReportID, ng.ReadAccess, ng.WriteAccess))
	return g, mapWriteErr(err)
}

// Replace applies an edited NewAccessGrant over the grant addressed by p.
func (r *AccessRepo) Replace(ctx context.Context, p model.Path, ng model.NewAccessGrant) (model.AccessGrant, error) {
	return r.Update(ctx, p, ng)
}

// UpdateReadAccess flips the read flag only.
func (r *AccessRepo) UpdateReadAccess(ctx context.Context, p model.Path, read bool) (model.AccessGrant, error) {
	const q = `UPDATE report_access SET read_access=$3 WHERE report_id=$1 AND id=$2 RETURNING ` + accessCols
	g, err := scanGrant(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID, read))
	return g, mapWriteErr(err)
}

// UpdateWriteAccess flips the write flag only.
func (r *AccessRepo) UpdateWriteAccess(ctx context.Context, p model.Path, write bool) (model.AccessGrant, error) {
	const q = `UPDATE report_access SET write_access=$3 WHERE report_id=$1 AND id=$2 RETURNING ` + accessCols
	g, err := scanGrant(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID, write))
	return g, mapWriteErr(err)
}

// Delete removes the grant addressed by p and returns it.
func (r *AccessRepo) Delete(ctx context.Context, p model.Path) (model.AccessGrant, error) {
	const q = `DELETE FROM report_access WHERE report_id=$1 AND id=$2 RETURNING ` + accessCols
	g, err := scanGrant(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID))
	return g, mapWriteErr(err)
}

// DeleteByReport removes every grant on a report.
func (r *AccessRepo) DeleteByReport(ctx context.Context, reportID int64) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM report_access WHERE report_id=$1`, reportID)
}

// Clear removes every grant.
func (r *AccessRepo) Clear(ctx context.Context) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM report_access`)
}

// --- resolver ---

const grantedReports = `
SELECT r.id, r.owner_id, r.title, r.description
FROM reports r
JOIN report_access a ON a.report_id = r.id
WHERE a.borrower_id=$1`

// ReportsVisibleFor returns every report the borrower holds any grant on.
func (r *AccessRepo) ReportsVisibleFor(ctx context.Context, borrowerID int64) ([]model.Report, error) {
	return r.reports(ctx, grantedReports+` ORDER BY r.id ASC`, borrowerID)
}

// ReportsReadableFor returns reports granted to the borrower with read access.
func (r *AccessRepo) ReportsReadableFor(ctx context.Context, borrowerID int64) ([]model.Report, error) {
	return r.reports(ctx, grantedReports+` AND a.read_access ORDER BY r.id ASC`, borrowerID)
}

// ReportsWritableFor returns reports granted to the borrower with write access.
func (r *AccessRepo) ReportsWritableFor(ctx context.Context, borrowerID int64) ([]model.Report, error) {
	return r.reports(ctx, grantedReports+` AND a.write_access ORDER BY r.id ASC`, borrowerID)
}

func (r *AccessRepo) reports(ctx context.Context, q string, borrowerID int64) ([]model.Report, error) {
	rows, err := r.db.Pool.Query(ctx, q, borrowerID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collect(rows, scanReport)
}
