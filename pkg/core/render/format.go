package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Dash stands in for unknown values.
const Dash = "—"

// Money formats dollars with thousands separators and no cents: $1,234.
func Money(v *float64) string {
	if v == nil || !finite(*v) {
		return Dash
	}
	return money(*v)
}

func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + group(strconv.FormatFloat(math.Round(v), 'f', 0, 64))
}

// Ratio formats a coverage ratio: 1.23x.
func Ratio(v *float64) string {
	if v == nil || !finite(*v) {
		return Dash
	}
	return fmt.Sprintf("%.2fx", *v)
}

// FractionPct formats a fraction as a percent: 0.05 -> 5.00%.
func FractionPct(v *float64) string {
	if v == nil || !finite(*v) {
		return Dash
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

// WholePct formats a whole-number percent: 5 -> 5.00%.
func WholePct(v *float64) string {
	if v == nil || !finite(*v) {
		return Dash
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// Number formats a plain quantity, dropping a zero fraction.
func Number(v *float64) string {
	if v == nil || !finite(*v) {
		return Dash
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func Int(v *int) string {
	if v == nil {
		return Dash
	}
	return strconv.Itoa(*v)
}

func Text(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return Dash
	}
	return *v
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ptr(v float64) *float64 { return &v }
