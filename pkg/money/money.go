package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a ledger amount from its wire form. The API accepts
// amounts as either a JSON string ("50.00") or a bare number (50), so both
// shapes must round-trip here.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}

// Display renders an amount the way the ledger view shows it: two decimal
// places, thousands separators, and a leading "+" for strictly positive
// values. E.g. 1234.5 → "+1,234.50", -50 → "-50.00", 0 → "0.00".
func Display(d decimal.Decimal) string {
	s := groupThousands(d.Abs().StringFixed(2))
	switch d.Sign() {
	case 1:
		return "+" + s
	case -1:
		return "-" + s
	default:
		return s
	}
}

// groupThousands inserts comma separators into the integer part of a
// non-negative fixed-point decimal string.
func groupThousands(s string) string {
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}
