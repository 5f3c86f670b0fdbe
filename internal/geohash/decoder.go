package geohash

import (
	"fmt"
	"math/big"
	"strconv"

	"geohasher/internal/domain"

	"github.com/shopspring/decimal"
)

// halfDivisor is 16^16, the size of the space a 16-hex-digit half can take.
var halfDivisor = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 64), 0)

var ten = big.NewInt(10)

// DecodeHalf converts a 16-hex-digit digest half into a fraction half/16^16,
// rounded half-up to precision fractional digits and stripped of trailing zeros.
//
// The result lies in [0, 1]. A half close to 2^64 rounds to exactly 1 at low
// precision; that value is returned as is.
func DecodeHalf(half string, precision int) (decimal.Decimal, error) {
	if precision <= 0 {
		return decimal.Zero, fmt.Errorf("%w: precision must be positive, got %d", domain.ErrInvalidInput, precision)
	}
	if len(half) != HalfHexLen {
		return decimal.Zero, fmt.Errorf("%w: digest half must be %d hex characters, got %q", domain.ErrInvalidInput, HalfHexLen, half)
	}

	n, err := strconv.ParseUint(half, 16, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: digest half %q: %v", domain.ErrInvalidInput, half, err)
	}

	value := decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
	return Normalize(value.DivRound(halfDivisor, int32(precision))), nil
}

// Normalize drops trailing zeros from the coefficient of d. The numeric value
// never changes.
func Normalize(d decimal.Decimal) decimal.Decimal {
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return decimal.New(0, 0)
	}

	exp := d.Exponent()
	var q, r big.Int
	for exp < 0 {
		q.QuoRem(coef, ten, &r)
		if r.Sign() != 0 {
			break
		}
		coef.Set(&q)
		exp++
	}
	return decimal.NewFromBigInt(coef, exp)
}
