package geohash

import (
	"fmt"

	"geohasher/internal/domain"

	"github.com/shopspring/decimal"
)

// MaxPriceScale is the number of fractional digits an index price may carry (cents).
const MaxPriceScale = 2

// CanonicalKey builds the string that gets hashed: "YYYY-MM-DD-PRICE", where PRICE
// always has exactly two fractional digits (10458.6 -> 10458.60).
func CanonicalKey(date domain.Date, price decimal.Decimal) (string, error) {
	if s := Scale(price); s > MaxPriceScale {
		return "", fmt.Errorf("%w: index price %s has %d fractional digits, at most %d allowed",
			domain.ErrInvalidInput, price.String(), s, MaxPriceScale)
	}
	return date.String() + "-" + price.StringFixed(MaxPriceScale), nil
}

// Scale returns the number of digits after the decimal point in d's
// representation, counting trailing zeros ("10458.60" has scale 2).
func Scale(d decimal.Decimal) int {
	if d.Exponent() >= 0 {
		return 0
	}
	return int(-d.Exponent())
}
