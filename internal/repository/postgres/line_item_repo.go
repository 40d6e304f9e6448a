package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/grantlemons/expenser/internal/model"
)

const lineItemCols = `id, report_id, item_name, item_price_cents`

// LineItemRepo implements repository.LineItemRepository using PostgreSQL.
type LineItemRepo struct{ db *DB }

// NewLineItemRepo constructs a line item repository.
func NewLineItemRepo(db *DB) *LineItemRepo { return &LineItemRepo{db: db} }

func scanLineItem(row pgx.Row) (model.LineItem, error) {
	var li model.LineItem
	if err := row.Scan(&li.ID, &li.ReportID, &li.ItemName, &li.ItemPriceCents); err != nil {
		return model.LineItem{}, err
	}
	return li, nil
}

// Insert adds a line item to an existing report.
func (r *LineItemRepo) Insert(ctx context.Context, nl model.NewLineItem) (model.LineItem, error) {
	const q = `
INSERT INTO report_line_items (report_id, item_name, item_price_cents)
VALUES ($1, $2, $3)
RETURNING ` + lineItemCols
	li, err := scanLineItem(r.db.Pool.QueryRow(ctx, q, nl.ReportID, nl.ItemName, nl.ItemPriceCents))
	return li, mapErr(err)
}

// GetByID selects a line item by its own ID, ignoring the report.
func (r *LineItemRepo) GetByID(ctx context.Context, id int64) (model.LineItem, error) {
	const q = `SELECT ` + lineItemCols + ` FROM report_line_items WHERE id=$1`
	li, err := scanLineItem(r.db.Pool.QueryRow(ctx, q, id))
	return li, mapErr(err)
}

// GetByPath selects a line item only if it belongs to p.ReportID.
func (r *LineItemRepo) GetByPath(ctx context.Context, p model.Path) (model.LineItem, error) {
	const q = `SELECT ` + lineItemCols + ` FROM report_line_items WHERE report_id=$1 AND id=$2`
	li, err := scanLineItem(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID))
	return li, mapErr(err)
}

// GetByReport lists a report's line items in insertion order.
func (r *LineItemRepo) GetByReport(ctx context.Context, reportID int64) ([]model.LineItem, error) {
	const q = `SELECT ` + lineItemCols + ` FROM report_line_items WHERE report_id=$1 ORDER BY id ASC`
	rows, err := r.db.Pool.Query(ctx, q, reportID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collect(rows, scanLineItem)
}

// Update overwrites every column of the item addressed by p.
func (r *LineItemRepo) Update(ctx context.Context, p model.Path, reportID int64, itemName string, priceCents int64) (model.LineItem, error) {
	const q = `
UPDATE report_line_items
SET report_id=$3, item_name=$4, item_price_cents=$5
WHERE report_id=$1 AND id=$2
RETURNING ` + lineItemCols
	li, err := scanLineItem(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID, reportID, itemName, priceCents))
	return li, mapWriteErr(err)
}

// Replace applies an edited NewLineItem over the item addressed by p.
func (r *LineItemRepo) Replace(ctx context.Context, p model.Path, nl model.NewLineItem) (model.LineItem, error) {
	return r.Update(ctx, p, nl.ReportID, nl.ItemName, nl.ItemPriceCents)
}

// UpdateItemName changes the name only.
func (r *LineItemRepo) UpdateItemName(ctx context.Context, p model.Path, itemName string) (model.LineItem, error) {
	const q = `UPDATE report_line_items SET item_name=$3 WHERE report_id=$1 AND id=$2 RETURNING ` + lineItemCols
	li, err := scanLineItem(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID, itemName))
	return li, mapWriteErr(err)
}

// UpdatePrice changes the price only.
func (r *LineItemRepo) UpdatePrice(ctx context.Context, p model.Path, priceCents int64) (model.LineItem, error) {
	const q = `UPDATE report_line_items SET item_price_cents=$3 WHERE report_id=$1 AND id=$2 RETURNING ` + lineItemCols
	li, err := scanLineItem(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID, priceCents))
	return li, mapWriteErr(err)
}

// Delete removes the item addressed by p and returns it.
func (r *LineItemRepo) Delete(ctx context.Context, p model.Path) (model.LineItem, error) {
	const q = `DELETE FROM report_line_items WHERE report_id=$1 AND id=$2 RETURNING ` + lineItemCols
	li, err := scanLineItem(r.db.Pool.QueryRow(ctx, q, p.ReportID, p.ID))
	return li, mapWriteErr(err)
}

// DeleteByReport removes every item of a report.
func (r *LineItemRepo) DeleteByReport(ctx context.Context, reportID int64) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM report_line_items WHERE report_id=$1`, reportID)
}

// Clear removes every line item.
func (r *LineItemRepo) Clear(ctx context.Context) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM report_line_items`)
}

// TotalCents sums the item prices of a report.
func (r *LineItemRepo) TotalCents(ctx context.Context, reportID int64) (int64, error) {
	const q = `SELECT COALESCE(SUM(item_price_cents),0)::bigint FROM report_line_items WHERE report_id=$1`
	var total int64
	if err := r.db.Pool.QueryRow(ctx, q, reportID).Scan(&total); err != nil {
		return 0, mapErr(err)
	}
	return total, nil
}
