package geohash

import (
	"geohasher/internal/domain"

	"github.com/shopspring/decimal"
)

// Compose adds the offsets to the integer parts of the position.
//
// Integer parts are taken toward zero, not floored: -122.08 contributes -122,
// so a negative axis moves toward zero by (1 - offset) rather than away from it.
func Compose(pos domain.Coordinate, fx, fy decimal.Decimal) domain.Coordinate {
	return domain.NewCoordinate(
		pos.X.Truncate(0).Add(fx),
		pos.Y.Truncate(0).Add(fy),
	)
}
