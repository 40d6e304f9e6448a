package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/grantlemons/expenser/internal/money"
)

// LineItemBuilder accumulates the fields of a NewLineItem.
type LineItemBuilder struct {
	reportID   slot[int64]
	itemName   slot[string]
	priceCents slot[int64]
	priceErr   error
}

// NewLineItemBuilder returns an empty line item builder.
func NewLineItemBuilder() *LineItemBuilder { return &LineItemBuilder{} }

// Report sets the parent report id from an existing report.
func (b *LineItemBuilder) Report(report Report) *LineItemBuilder { return b.ReportID(report.ID) }

func (b *LineItemBuilder) ReportID(id int64) *LineItemBuilder {
	b.reportID.put(id)
	return b
}

func (b *LineItemBuilder) ItemName(name string) *LineItemBuilder {
	b.itemName.put(name)
	return b
}

// PriceUSD sets the price from dollars, truncated to whole cents. An amount
// outside the int64 cents range makes Build fail with money.ErrOutOfRange.
func (b *LineItemBuilder) PriceUSD(dollars decimal.Decimal) *LineItemBuilder {
	cents, err := money.ToCents(dollars)
	if err != nil {
		b.priceCents = slot[int64]{}
		b.priceErr = err
		return b
	}
	return b.PriceCents(cents)
}

func (b *LineItemBuilder) PriceCents(cents int64) *LineItemBuilder {
	b.priceCents.put(cents)
	b.priceErr = nil
	return b
}

// Build returns the NewLineItem, the price conversion error, or an *IncompleteError.
func (b *LineItemBuilder) Build() (NewLineItem, error) {
	if b.priceErr != nil {
		return NewLineItem{}, fmt.Errorf("line item: itemPrice: %w", b.priceErr)
	}
	r := required{entity: "line item"}
	r.check("reportId", b.reportID.set)
	r.check("itemName", b.itemName.set)
	r.check("itemPrice", b.priceCents.set)
	if err := r.err(); err != nil {
		return NewLineItem{}, err
	}
	return NewLineItem{
		ReportID:       b.reportID.v,
		ItemName:       b.itemName.v,
		ItemPriceCents: b.priceCents.v,
	}, nil
}
