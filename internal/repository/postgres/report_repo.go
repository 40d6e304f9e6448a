package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/grantlemons/expenser/internal/model"
)

const reportCols = `id, owner_id, title, description`

// ReportRepo implements repository.ReportRepository using PostgreSQL.
type ReportRepo struct{ db *DB }

// NewReportRepo constructs a report repository.
func NewReportRepo(db *DB) *ReportRepo { return &ReportRepo{db: db} }

func scanReport(row pgx.Row) (model.Report, error) {
	var rp model.Report
	if err := row.Scan(&rp.ID, &rp.OwnerID, &rp.Title, &rp.Description); err != nil {
		return model.Report{}, err
	}
	return rp, nil
}

// Insert creates a report for an existing owner.
func (r *ReportRepo) Insert(ctx context.Context, nr model.NewReport) (model.Report, error) {
	const q = `
INSERT INTO reports (owner_id, title, description)
VALUES ($1, $2, $3)
RETURNING ` + reportCols
	rp, err := scanReport(r.db.Pool.QueryRow(ctx, q, nr.OwnerID, nr.Title, nr.Description))
	return rp, mapErr(err)
}

// GetByID selects a report by ID.
func (r *ReportRepo) GetByID(ctx context.Context, id int64) (model.Report, error) {
	const q = `SELECT ` + reportCols + ` FROM reports WHERE id=$1`
	rp, err := scanReport(r.db.Pool.QueryRow(ctx, q, id))
	return rp, mapErr(err)
}

// GetByOwner lists the reports owned by ownerID, oldest first.
func (r *ReportRepo) GetByOwner(ctx context.Context, ownerID int64) ([]model.Report, error) {
	const q = `SELECT ` + reportCols + ` FROM reports WHERE owner_id=$1 ORDER BY id ASC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collect(rows, scanReport)
}

// Update overwrites owner, title and description.
func (r *ReportRepo) Update(ctx context.Context, id, ownerID int64, title string, description *string) (model.Report, error) {
	const q = `
UPDATE reports
SET owner_id=$2, title=$3, description=$4
WHERE id=$1
RETURNING ` + reportCols
	rp, err := scanReport(r.db.Pool.QueryRow(ctx, q, id, ownerID, title, description))
	return rp, mapWriteErr(err)
}

// Replace applies an edited NewReport over an existing row.
func (r *ReportRepo) Replace(ctx context.Context, id int64, nr model.NewReport) (model.Report, error) {
	return r.Update(ctx, id, nr.OwnerID, nr.Title, nr.Description)
}

// UpdateTitle changes the title only.
func (r *ReportRepo) UpdateTitle(ctx context.Context, id int64, title string) (model.Report, error) {
	const q = `UPDATE reports SET title=$2 WHERE id=$1 RETURNING ` + reportCols
	rp, err := scanReport(r.db.Pool.QueryRow(ctx, q, id, title))
	return rp, mapWriteErr(err)
}

// UpdateDescription changes the description only.
func (r *ReportRepo) UpdateDescription(ctx context.Context, id int64, description *string) (model.Report, error) {
	const q = `UPDATE reports SET description=$2 WHERE id=$1 RETURNING ` + reportCols
	rp, err := scanReport(r.db.Pool.QueryRow(ctx, q, id, description))
	return rp, mapWriteErr(err)
}

// Delete removes the report's line items, proofs and grants, then the report, in one transaction.
func (r *ReportRepo) Delete(ctx context.Context, id int64) (rp model.Report, err error) {
	const (
		delItems  = `DELETE FROM report_line_items WHERE report_id=$1`
		delProof  = `DELETE FROM report_proof WHERE report_id=$1`
		delAccess = `DELETE FROM report_access WHERE report_id=$1`
		delReport = `DELETE FROM reports WHERE id=$1 RETURNING ` + reportCols
	)
	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, q := range []string{delItems, delProof, delAccess} {
			if _, err := tx.Exec(ctx, q, id); err != nil {
				return mapErr(err)
			}
		}
		var scanErr error
		rp, scanErr = scanReport(tx.QueryRow(ctx, delReport, id))
		return mapWriteErr(scanErr)
	})
	if err != nil {
		return model.Report{}, err
	}
	return rp, nil
}

// Clear removes every report together with every report-scoped row.
func (r *ReportRepo) Clear(ctx context.Context) (n int64, err error) {
	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, q := range []string{
			`DELETE FROM report_line_items`,
			`DELETE FROM report_proof`,
			`DELETE FROM report_access`,
		} {
			if _, err := tx.Exec(ctx, q); err != nil {
				return mapErr(err)
			}
		}
		var cerr error
		n, cerr = execCount(ctx, tx, `DELETE FROM reports`)
		return cerr
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
