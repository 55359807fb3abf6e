package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"github.com/shopspring/decimal"
)

// Quantity notation: "2C5L" (cartons + leftover lines), "10C", "7L", or a bare
// integer already in total lines. All stock arithmetic is done in lines; the
// carton breakdown is only a display/input convenience per product.

var (
	cartonLineRe = regexp.MustCompile(`^(\d+)C(\d+)L$`)
	cartonOnlyRe = regexp.MustCompile(`^(\d+)C$`)
	lineOnlyRe   = regexp.MustCompile(`^(\d+)L$`)
)

// ParseQuantity converts the carton/line notation to a total-lines count.
// Matching priority: "<n>C<m>L", "<n>C", "<n>L", bare integer.
// When linesPerCarton <= 1 the product has no carton packaging and carton
// notation collapses to 1 line per carton.
func ParseQuantity(text string, linesPerCarton int) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	if s == "" {
		return 0, utils.NewValidationError("quantity is required")
	}
	if linesPerCarton < 1 {
		linesPerCarton = 1
	}

	if m := cartonLineRe.FindStringSubmatch(s); m != nil {
		cartons, err1 := strconv.Atoi(m[1])
		lines, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			return 0, utils.NewValidationError("invalid quantity: " + text)
		}
		return cartons*linesPerCarton + lines, nil
	}
	if m := cartonOnlyRe.FindStringSubmatch(s); m != nil {
		cartons, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, utils.NewValidationError("invalid quantity: " + text)
		}
		return cartons * linesPerCarton, nil
	}
	if m := lineOnlyRe.FindStringSubmatch(s); m != nil {
		lines, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, utils.NewValidationError("invalid quantity: " + text)
		}
		return lines, nil
	}

	lines, err := strconv.Atoi(s)
	if err != nil || lines < 0 {
		return 0, utils.NewValidationError("invalid quantity: " + text)
	}
	return lines, nil
}

// FormatQuantity renders a total-lines count in carton/line notation.
// Always derived from linesPerCarton at display time; the breakdown is never
// round-tripped through previously rendered text.
func FormatQuantity(totalLines int, linesPerCarton int) string {
	if linesPerCarton <= 1 {
		return strconv.Itoa(totalLines)
	}
	cartons := totalLines / linesPerCarton
	lines := totalLines % linesPerCarton
	switch {
	case cartons > 0 && lines > 0:
		return fmt.Sprintf("%dC%dL", cartons, lines)
	case cartons > 0:
		return fmt.Sprintf("%dC", cartons)
	case lines > 0:
		return fmt.Sprintf("%dL", lines)
	default:
		return "0"
	}
}

// PricePerLine converts a per-carton price to the line-level unit price,
// rounded to 2 decimal places half away from zero at persistence time.
func PricePerLine(pricePerCarton decimal.Decimal, linesPerCarton int) decimal.Decimal {
	if linesPerCarton <= 1 {
		return utils.RoundMoney(pricePerCarton)
	}
	return pricePerCarton.DivRound(decimal.NewFromInt(int64(linesPerCarton)), 2)
}
