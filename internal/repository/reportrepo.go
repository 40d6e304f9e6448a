package repository

import (
	"context"

	"github.com/grantlemons/expenser/internal/model"
)

// ReportRepository provides CRUD access for reports.
type ReportRepository interface {
	// Insert persists a new report. An unknown owner fails with errs.ErrConstraint.
	Insert(ctx context.Context, r model.NewReport) (model.Report, error)
	// GetByID loads a report by ID.
	GetByID(ctx context.Context, id int64) (model.Report, error)
	// GetByOwner returns every report owned outright by ownerID.
	GetByOwner(ctx context.Context, ownerID int64) ([]model.Report, error)
	// Update overwrites every mutable column.
	Update(ctx context.Context, id, ownerID int64, title string, description *string) (model.Report, error)
	// Replace applies a NewReport over an existing row; same as Update with its fields.
	Replace(ctx context.Context, id int64, r model.NewReport) (model.Report, error)
	// UpdateTitle changes only the title.
	UpdateTitle(ctx context.Context, id int64, title string) (model.Report, error)
	// UpdateDescription changes only the description (nil clears it).
	UpdateDescription(ctx context.Context, id int64, description *string) (model.Report, error)
	// Delete removes the report with all of its line items, proofs and grants.
	Delete(ctx context.Context, id int64) (model.Report, error)
	// Clear removes every report and every report-scoped row.
	Clear(ctx context.Context) (int64, error)
}
