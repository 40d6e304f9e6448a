package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/grantlemons/expenser/internal/model"
)

const proofCols = `id, report_id, data`

// ProofRepo implements repository.ProofRepository using PostgreSQL.
type ProofRepo struct{ db *DB }

// NewProofRepo constructs a proof repository.
func NewProofRepo(db *DB) *ProofRepo { return &ProofRepo{db: db} }

func scanProof(row pgx.Row) (model.Proof, error) {
	var p model.Proof
	if err := row.Scan(&p.ID, &p.ReportID, &p.Data); err != nil {
		return model.Proof{}, err
	}
	return p, nil
}

// Insert attaches a proof to an existing report.
func (r *ProofRepo) Insert(ctx context.Context, np model.NewProof) (model.Proof, error) {
	const q = `INSERT INTO report_proof (report_id, data) VALUES ($1, $2) RETURNING ` + proofCols
	p, err := scanProof(r.db.Pool.QueryRow(ctx, q, np.ReportID, np.Data))
	return p, mapErr(err)
}

// GetByID selects a proof by its own ID.
func (r *ProofRepo) GetByID(ctx context.Context, id int64) (model.Proof, error) {
	const q = `SELECT ` + proofCols + ` FROM report_proof WHERE id=$1`
	p, err := scanProof(r.db.Pool.QueryRow(ctx, q, id))
	return p, mapErr(err)
}

// GetByPath selects a proof only if it belongs to path.ReportID.
func (r *ProofRepo) GetByPath(ctx context.Context, path model.Path) (model.Proof, error) {
	const q = `SELECT ` + proofCols + ` FROM report_proof WHERE report_id=$1 AND id=$2`
	p, err := scanProof(r.db.Pool.QueryRow(ctx, q, path.ReportID, path.ID))
	return p, mapErr(err)
}

// GetByReport lists a report's proofs in insertion order.
func (r *ProofRepo) GetByReport(ctx context.Context, reportID int64) ([]model.Proof, error) {
	const q = `SELECT ` + proofCols + ` FROM report_proof WHERE report_id=$1 ORDER BY id ASC`
	rows, err := r.db.Pool.Query(ctx, q, reportID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collect(rows, scanProof)
}

// Update overwrites report and payload of the proof addressed by path.
func (r *ProofRepo) Update(ctx context.Context, path model.Path, reportID int64, data []byte) (model.Proof, error) {
	const q = `
UPDATE report_proof
SET report_id=$3, data=$4
WHERE report_id=$1 AND id=$2
RETURNING ` + proofCols
	p, err := scanProof(r.db.Pool.QueryRow(ctx, q, path.ReportID, path.ID, reportID, data))
	return p, mapWriteErr(err)
}

// Replace applies an edited NewProof over the proof addressed by path.
func (r *ProofRepo) Replace(ctx context.Context, path model.Path, np model.NewProof) (model.Proof, error) {
	return r.Update(ctx, path, np.ReportID, np.Data)
}

// UpdateData swaps the payload only.
func (r *ProofRepo) UpdateData(ctx context.Context, path model.Path, data []byte) (model.Proof, error) {
	const q = `UPDATE report_proof SET data=$3 WHERE report_id=$1 AND id=$2 RETURNING ` + proofCols
	p, err := scanProof(r.db.Pool.QueryRow(ctx, q, path.ReportID, path.ID, data))
	return p, mapWriteErr(err)
}

// Delete removes the proof addressed by path and returns it.
func (r *ProofRepo) Delete(ctx context.Context, path model.Path) (model.Proof, error) {
	const q = `DELETE FROM report_proof WHERE report_id=$1 AND id=$2 RETURNING ` + proofCols
	p, err := scanProof(r.db.Pool.QueryRow(ctx, q, path.ReportID, path.ID))
	return p, mapWriteErr(err)
}

// DeleteByReport removes every proof of a report.
func (r *ProofRepo) DeleteByReport(ctx context.Context, reportID int64) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM report_proof WHERE report_id=$1`, reportID)
}

// Clear removes every proof.
func (r *ProofRepo) Clear(ctx context.Context) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM report_proof`)
}
