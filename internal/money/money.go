// Package money converts between decimal dollar amounts and integer cents.
//
// Cents are the storage and arithmetic unit. Conversion into cents truncates
// toward zero: 12.349 becomes 1234 and -12.349 becomes -1234. Amounts whose
// cents do not fit in an int64 are rejected, never wrapped.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/grantlemons/expenser/internal/errs"
)

// Scale is the number of cents in one dollar.
const Scale = 100

var (
	hundred  = decimal.NewFromInt(Scale)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ErrOutOfRange reports an amount whose cents overflow int64. It matches errs.ErrInvalid.
var ErrOutOfRange = fmt.Errorf("%w: amount out of range", errs.ErrInvalid)

// ToCents returns dollars × 100 truncated toward zero.
func ToCents(dollars decimal.Decimal) (int64, error) {
	c := dollars.Mul(hundred).Truncate(0)
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, dollars.String())
	}
	return c.IntPart(), nil
}

// ToDollars returns cents / 100 as an exact decimal.
func ToDollars(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FromFloat converts a float dollar amount using the shortest decimal
// representation of f, so 12.5 is treated as exactly 12.50.
func FromFloat(dollars float64) (int64, error) {
	if math.IsNaN(dollars) || math.IsInf(dollars, 0) {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, dollars)
	}
	return ToCents(decimal.NewFromFloat(dollars))
}

// Parse reads a decimal string such as "12.50" into cents.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", errs.ErrInvalid, s)
	}
	return ToCents(d)
}

// Format renders cents with exactly two fractional digits.
func Format(cents int64) string {
	return ToDollars(cents).StringFixed(2)
}
