package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// IndexPriceProvider returns the most recent opening value of the reference index
// on or before the given date.
type IndexPriceProvider interface {
	MostRecentOpening(ctx context.Context, date Date) (decimal.Decimal, error)
}
