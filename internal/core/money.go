// Package core provides money parsing and presentation helpers.
//
// Amounts are float64 throughout aggregation; rounding to two decimals only
// happens when a value is formatted for display.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// surrounding whitespace. Zero, negative, non-numeric, NaN and infinite values
// are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("4.50")  -> 4.5, nil
//	ParseAmount("4,50")  -> 4.5, nil
//	ParseAmount("-5.00") -> 0, ErrInvalidAmount
//	ParseAmount("0x1p3") -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Decimal notation only; ParseFloat would also take hex floats.
	if strings.ContainsAny(s, "xX") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount with exactly two decimals, half away from zero.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// RoundAmount rounds to two decimals for view models.
func RoundAmount(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

var currencyByCountry = map[string]string{
	"united states":  "$",
	"canada":         "CA$",
	"australia":      "A$",
	"united kingdom": "£",
	"india":          "₹",
	"japan":          "¥",
	"germany":        "€",
	"france":         "€",
	"italy":          "€",
	"spain":          "€",
	"netherlands":    "€",
	"ireland":        "€",
}

// CurrencySymbol returns the display symbol for a profile country, dollars by default.
func CurrencySymbol(country string) string {
	if sym, ok := currencyByCountry[strings.ToLower(strings.TrimSpace(country))]; ok {
		return sym
	}
	return "$"
}

// FormatCurrency renders v as e.g. "$1,234.50" (negative: "-$1,234.50").
func FormatCurrency(v float64, country string) string {
	neg := v < 0
	s := FormatAmount(math.Abs(v))
	intPart, frac, _ := strings.Cut(s, ".")
	out := CurrencySymbol(country) + groupThousands(intPart) + "." + frac
	if neg && strings.Trim(s, "0.") != "" {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
