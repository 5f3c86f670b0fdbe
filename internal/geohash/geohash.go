// Package geohash implements the xkcd #426 geohashing algorithm: a date and the
// day's Dow Jones opening are hashed with MD5 and the two halves of the digest
// become fractional offsets added to the integer parts of a position.
package geohash

import (
	"fmt"

	"geohasher/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of fractional digits kept when decoding a digest half.
const DefaultPrecision = 14

// Result holds every intermediate value of one computation.
type Result struct {
	Key         string
	Digest      Digest
	Offset      domain.Coordinate
	Destination domain.Coordinate
}

// Hash runs the whole pipeline and keeps the intermediate values.
// Inputs are validated before anything is hashed.
func Hash(date domain.Date, price decimal.Decimal, pos domain.Coordinate, precision int) (Result, error) {
	if precision <= 0 {
		return Result{}, fmt.Errorf("%w: precision must be positive, got %d", domain.ErrInvalidInput, precision)
	}

	key, err := CanonicalKey(date, price)
	if err != nil {
		return Result{}, err
	}

	digest, err := Sum(key)
	if err != nil {
		return Result{}, err
	}

	fx, err := DecodeHalf(digest.High(), precision)
	if err != nil {
		return Result{}, err
	}
	fy, err := DecodeHalf(digest.Low(), precision)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Key:         key,
		Digest:      digest,
		Offset:      domain.NewCoordinate(fx, fy),
		Destination: Compose(pos, fx, fy),
	}, nil
}

// Compute returns the destination for the given date, index opening and position.
func Compute(date domain.Date, price decimal.Decimal, pos domain.Coordinate, precision int) (domain.Coordinate, error) {
	res, err := Hash(date, price, pos, precision)
	if err != nil {
		return domain.Coordinate{}, err
	}
	return res.Destination, nil
}
