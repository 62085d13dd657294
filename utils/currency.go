package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineTotal returns quantity x unitPrice rounded to cents.
func LineTotal(quantity int, unitPrice float64) float64 {
	return decimal.NewFromInt(int64(quantity)).
		Mul(decimal.NewFromFloat(unitPrice)).
		Round(2).
		InexactFloat64()
}

// Percentage returns amount x rate rounded to cents.
func Percentage(amount, rate float64) float64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		InexactFloat64()
}

// SumMoney adds amounts without accumulating binary float error.
func SumMoney(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

// Covers reports whether paid reaches due once both are rounded to cents.
func Covers(paid, due float64) bool {
	return decimal.NewFromFloat(paid).Round(2).GreaterThanOrEqual(decimal.NewFromFloat(due).Round(2))
}

// FormatBRL formats an amount in Brazilian reais.
// Example: 1234.5 -> "R$ 1.234,50"
func FormatBRL(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	formatted := d.StringFixed(2)
	parts := strings.SplitN(formatted, ".", 2)
	integerPart := parts[0]
	decimalPart := parts[1]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return "R$ " + sign + strings.Join(groups, ".") + "," + decimalPart
}
