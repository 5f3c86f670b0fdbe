package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDate_MinusDays(t *testing.T) {
	tests := []struct {
		name string
		from Date
		days int
		want string
	}{
		{"same month", NewDate(2005, time.May, 26), 1, "2005-05-25"},
		{"lookback window", NewDate(2005, time.May, 26), 30, "2005-04-26"},
		{"year boundary", NewDate(2024, time.January, 10), 30, "2023-12-11"},
		{"leap day", NewDate(2024, time.March, 30), 30, "2024-02-29"},
		{"zero", NewDate(2024, time.March, 30), 0, "2024-03-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.MinusDays(tt.days)
			if got.String() != tt.want {
				t.Errorf("MinusDays(%d) = %s, want %s", tt.days, got, tt.want)
			}
		})
	}

	t.Run("receiver unchanged", func(t *testing.T) {
		d := NewDate(2005, time.May, 26)
		_ = d.MinusDays(30)
		if d.String() != "2005-05-26" {
			t.Errorf("receiver mutated: %s", d)
		}
	})
}

func TestDate_Format(t *testing.T) {
	d := NewDate(2005, time.May, 6)
	if got := d.Format(WSJLayout); got != "05/06/2005" {
		t.Errorf("WSJ format = %q, want %q", got, "05/06/2005")
	}
	if got := d.String(); got != "2005-05-06" {
		t.Errorf("String() = %q, want %q", got, "2005-05-06")
	}
}

func TestDateOf_UsesLocation(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2005, time.May, 26, 23, 30, 0, 0, loc)
	if got := DateOf(ts).String(); got != "2005-05-26" {
		t.Errorf("DateOf() = %s, want 2005-05-26", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2008-05-20")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if !d.Equal(NewDate(2008, time.May, 20)) {
		t.Errorf("ParseDate() = %s", d)
	}

	if _, err := ParseDate("05/20/2008"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
