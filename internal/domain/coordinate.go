package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MapsURLFormat is the Google Maps place link for a latitude,longitude pair.
const MapsURLFormat = "https://www.google.com/maps/place/%s,%s"

// Coordinate is a latitude/longitude pair.
// It is used both for the caller's current position and for the computed destination.
type Coordinate struct {
	X decimal.Decimal `json:"x"` // Latitude
	Y decimal.Decimal `json:"y"` // Longitude
}

// NewCoordinate creates a coordinate from two decimals
func NewCoordinate(x, y decimal.Decimal) Coordinate {
	return Coordinate{X: x, Y: y}
}

// ParseCoordinate parses latitude and longitude strings.
func ParseCoordinate(lat, lon string) (Coordinate, error) {
	x, err := decimal.NewFromString(lat)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: latitude %q", ErrInvalidInput, lat)
	}
	y, err := decimal.NewFromString(lon)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: longitude %q", ErrInvalidInput, lon)
	}
	return Coordinate{X: x, Y: y}, nil
}

// Equal reports whether both axes hold the same numeric value.
func (c Coordinate) Equal(o Coordinate) bool {
	return c.X.Equal(o.X) && c.Y.Equal(o.Y)
}

// SimpleString renders "(x, y)" with each axis rounded half-up to the given
// number of significant digits.
func (c Coordinate) SimpleString(digits int) string {
	return "(" + roundSignificant(c.X, digits) + ", " + roundSignificant(c.Y, digits) + ")"
}

// MapsURL returns a map link embedding the full-precision coordinates.
func (c Coordinate) MapsURL() string {
	return fmt.Sprintf(MapsURLFormat, c.X.String(), c.Y.String())
}

func (c Coordinate) String() string {
	return "(" + c.X.String() + ", " + c.Y.String() + ")"
}

// roundSignificant keeps at most `digits` significant digits. Values that
// already have fewer digits are printed unchanged.
func roundSignificant(d decimal.Decimal, digits int) string {
	if d.IsZero() || digits <= 0 {
		return d.String()
	}

	numDigits := len(d.Coefficient().Abs(d.Coefficient()).String())
	// Position of the most significant digit relative to the decimal point.
	msd := numDigits + int(d.Exponent()) - 1
	places := digits - 1 - msd

	scale := 0
	if d.Exponent() < 0 {
		scale = int(-d.Exponent())
	}
	if places >= scale {
		return d.StringFixed(int32(scale))
	}

	rounded := d.Round(int32(places))
	if places > 0 {
		return rounded.StringFixed(int32(places))
	}
	return rounded.String()
}
