package models

import (
	"testing"

	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		text           string
		linesPerCarton int
		want           int
	}{
		{"2C5L", 10, 25},
		{"3C", 10, 30},
		{"7L", 10, 7},
		{"12", 1, 12},
		{"12", 10, 12},
		{"0", 10, 0},
		{"2c5l", 10, 25}, // case-insensitive
		{" 4C ", 12, 48},
		{"1C1L", 1, 2}, // no carton packaging: 1 line per carton
	}
	for _, c := range cases {
		got, err := ParseQuantity(c.text, c.linesPerCarton)
		if err != nil {
			t.Errorf("ParseQuantity(%q, %d): unexpected error %v", c.text, c.linesPerCarton, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseQuantity(%q, %d) = %d, want %d", c.text, c.linesPerCarton, got, c.want)
		}
	}
}

func TestParseQuantityInvalid(t *testing.T) {
	for _, text := range []string{"", "abc", "-5", "C5L", "2C-1L", "2.5", "5L5C"} {
		_, err := ParseQuantity(text, 10)
		if err == nil {
			t.Errorf("ParseQuantity(%q) should fail", text)
			continue
		}
		if !utils.IsValidationError(err) {
			t.Errorf("ParseQuantity(%q): expected ValidationError, got %v", text, err)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	cases := []struct {
		totalLines     int
		linesPerCarton int
		want           string
	}{
		{25, 10, "2C5L"},
		{30, 10, "3C"},
		{7, 10, "7L"},
		{0, 10, "0"},
		{12, 1, "12"},
		{12, 0, "12"},
	}
	for _, c := range cases {
		got := FormatQuantity(c.totalLines, c.linesPerCarton)
		if got != c.want {
			t.Errorf("FormatQuantity(%d, %d) = %q, want %q", c.totalLines, c.linesPerCarton, got, c.want)
		}
	}
}

func TestQuantityRoundTrip(t *testing.T) {
	for linesPerCarton := 1; linesPerCarton <= 24; linesPerCarton++ {
		for totalLines := 0; totalLines <= 200; totalLines++ {
			text := FormatQuantity(totalLines, linesPerCarton)
			got, err := ParseQuantity(text, linesPerCarton)
			if err != nil {
				t.Fatalf("round-trip ParseQuantity(%q, %d): %v", text, linesPerCarton, err)
			}
			if got != totalLines {
				t.Fatalf("round-trip failed: format(%d, %d)=%q parsed back to %d", totalLines, linesPerCarton, text, got)
			}
		}
	}
}

func TestPricePerLine(t *testing.T) {
	got := PricePerLine(decimal.NewFromInt(100), 10)
	if !got.Equal(decimal.RequireFromString("10")) {
		t.Errorf("PricePerLine(100, 10) = %s, want 10", got)
	}
	got = PricePerLine(decimal.NewFromInt(100), 3)
	if !got.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("PricePerLine(100, 3) = %s, want 33.33", got)
	}
	got = PricePerLine(decimal.RequireFromString("99.99"), 1)
	if !got.Equal(decimal.RequireFromString("99.99")) {
		t.Errorf("PricePerLine(99.99, 1) = %s, want 99.99", got)
	}
	// half away from zero
	got = PricePerLine(decimal.RequireFromString("0.25"), 2)
	if !got.Equal(decimal.RequireFromString("0.13")) {
		t.Errorf("PricePerLine(0.25, 2) = %s, want 0.13", got)
	}
}
