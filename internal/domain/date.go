package domain

import (
	"fmt"
	"time"
)

const (
	// DashLayout is the YYYY-MM-DD layout used in the hashed key.
	DashLayout = "2006-01-02"
	// WSJLayout is the MM/DD/YYYY layout expected by the historical-price endpoint.
	WSJLayout = "01/02/2006"
)

// Date is a calendar date without time of day or location.
// Values are immutable; arithmetic returns a new Date.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate creates a Date, normalizing out-of-range values the way time.Date does
// (e.g. April 31 becomes May 1).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DashLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q: %v", ErrInvalidInput, s, err)
	}
	return DateOf(t), nil
}

func (d Date) Year() int { return d.year }

func (d Date) Month() time.Month { return d.month }

func (d Date) Day() int { return d.day }

func (d Date) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }

func (d Date) Equal(o Date) bool { return d == o }

func (d Date) Before(o Date) bool { return d.time().Before(o.time()) }

// MinusDays returns the date n calendar days earlier.
func (d Date) MinusDays(n int) Date {
	return NewDate(d.year, d.month, d.day-n)
}

// Format formats the date with a time layout.
func (d Date) Format(layout string) string {
	return d.time().Format(layout)
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DashLayout)
}

func (d Date) time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}
