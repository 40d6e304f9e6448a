package repository

import (
	"context"

	"github.com/grantlemons/expenser/internal/model"
)

// LineItemRepository provides access to report line items addressed by model.Path.
type LineItemRepository interface {
	Insert(ctx context.Context, li model.NewLineItem) (model.LineItem, error)
	GetByID(ctx context.Context, id int64) (model.LineItem, error)
	// GetByPath fails with errs.ErrNotFound when the id belongs to another report.
	GetByPath(ctx context.Context, p model.Path) (model.LineItem, error)
	GetByReport(ctx context.Context, reportID int64) ([]model.LineItem, error)
	Update(ctx context.Context, p model.Path, reportID int64, itemName string, priceCents int64) (model.LineItem, error)
	Replace(ctx context.Context, p model.Path, li model.NewLineItem) (model.LineItem, error)
	UpdateItemName(ctx context.Context, p model.Path, itemName string) (model.LineItem, error)
	UpdatePrice(ctx context.Context, p model.Path, priceCents int64) (model.LineItem, error)
	Delete(ctx context.Context, p model.Path) (model.LineItem, error)
	DeleteByReport(ctx context.Context, reportID int64) (int64, error)
	Clear(ctx context.Context) (int64, error)
	// TotalCents sums the prices of a report's items; 0 for a report without items.
	TotalCents(ctx context.Context, reportID int64) (int64, error)
}

// ProofRepository provides access to report proofs addressed by model.Path.
type ProofRepository interface {
	Insert(ctx context.Context, p model.NewProof) (model.Proof, error)
	GetByID(ctx context.Context, id int64) (model.Proof, error)
	GetByPath(ctx context.Context, p model.Path) (model.Proof, error)
	GetByReport(ctx context.Context, reportID int64) ([]model.Proof, error)
	Update(ctx context.Context, p model.Path, reportID int64, data []byte) (model.Proof, error)
	Replace(ctx context.Context, p model.Path, np model.NewProof) (model.Proof, error)
	UpdateData(ctx context.Context, p model.Path, data []byte) (model.Proof, error)
	Delete(ctx context.Context, p model.Path) (model.Proof, error)
	DeleteByReport(ctx context.Context, reportID int64) (int64, error)
	Clear(ctx context.Context) (int64, error)
}

// AccessRepository provides access to report access grants addressed by model.Path.
type AccessRepository interface {
	// Insert fails with errs.ErrAlreadyExists when the borrower already holds a grant on the report.
	Insert(ctx context.Context, g model.NewAccessGrant) (model.AccessGrant, error)
	GetByID(ctx context.Context, id int64) (model.AccessGrant, error)
	GetByPath(ctx context.Context, p model.Path) (model.AccessGrant, error)
	GetByReport(ctx context.Context, reportID int64) ([]model.AccessGrant, error)
	GetByBorrower(ctx context.Context, borrowerID int64) ([]model.AccessGrant, error)
	// GetForBorrower returns the borrower's grant on a report.
	GetForBorrower(ctx context.Context, reportID, borrowerID int64) (model.AccessGrant, error)
	Update(ctx context.Context, p model.Path, g model.NewAccessGrant) (model.AccessGrant, error)
	Replace(ctx context.Context, p model.Path, g model.NewAccessGrant) (model.AccessGrant, error)
	UpdateReadAccess(ctx context.Context, p model.Path, read bool) (model.AccessGrant, error)
	UpdateWriteAccess(ctx context.Context, p model.Path, write bool) (model.AccessGrant, error)
	Delete(ctx context.Context, p model.Path) (model.AccessGrant, error)
	DeleteByReport(ctx context.Context, reportID int64) (int64, error)
	Clear(ctx context.Context) (int64, error)
}

// AccessResolver computes the reports a borrower can see through grants.
// Owned reports are not included; see ReportRepository.GetByOwner.
type AccessResolver interface {
	// ReportsVisibleFor returns reports with any grant for the borrower, regardless of flags.
	ReportsVisibleFor(ctx context.Context, borrowerID int64) ([]model.Report, error)
	// ReportsReadableFor returns reports granted with read access.
	ReportsReadableFor(ctx context.Context, borrowerID int64) ([]model.Report, error)
	// ReportsWritableFor returns reports granted with write access.
	ReportsWritableFor(ctx context.Context, borrowerID int64) ([]model.Report, error)
}
