// Package money holds the currency helpers shared by the cart, the receipt
// renderer and the reports. Every amount is a decimal.Decimal so sums of line
// totals reconcile exactly.
package money

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol is the Thai baht sign printed in front of every amount.
const Symbol = "฿"

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Format renders an amount as symbol + two decimals, e.g. ฿1234.50.
// Negative amounts keep the sign in front of the symbol: -฿20.00.
func Format(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + Symbol + amount.Neg().StringFixed(2)
	}
	return Symbol + amount.StringFixed(2)
}

// Fixed renders an amount with two decimals and no symbol (CSV columns).
func Fixed(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Parse reads the leading number of a raw user input the way a lenient
// float parser does: "12.5abc" is 12.5, " 7" is 7. ok is false when no
// number could be found or when it does not fit a float64 ("1e400").
// Values carry at most float64 precision, so their scale stays small.
func Parse(raw string) (decimal.Decimal, bool) {
	d, inf, ok := parse(raw)
	return d, ok && inf == 0
}

// ParseOrZero is Parse with unparsable input treated as 0.
func ParseOrZero(raw string) decimal.Decimal {
	d, _ := Parse(raw)
	return d
}

// ParseCapped is ParseOrZero except that numbers too large to be finite
// become +limit or -limit.
func ParseCapped(raw string, limit decimal.Decimal) decimal.Decimal {
	d, inf, ok := parse(raw)
	switch {
	case !ok:
		return decimal.Zero
	case inf > 0:
		return limit
	case inf < 0:
		return limit.Neg()
	}
	return d
}

// parse returns the leading number of raw. inf is +1 or -1 when the number
// overflows a float64.
func parse(raw string) (d decimal.Decimal, inf int, ok bool) {
	m := numberPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return decimal.Zero, 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if math.IsInf(f, 0) {
		if f > 0 {
			return decimal.Zero, 1, true
		}
		return decimal.Zero, -1, true
	}
	if err != nil {
		return decimal.Zero, 0, false
	}
	return decimal.NewFromFloat(f), 0, true
}

// NonNegative clamps an amount at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Canonical is the shortest exact string for an amount ("100", "100.5").
// Equal amounts always produce equal strings regardless of scale.
func Canonical(d decimal.Decimal) string {
	return d.String()
}
