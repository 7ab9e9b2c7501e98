package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatXOF renders an amount in CFA francs: no decimals, an ASCII space as
// thousands separator and before the currency, which follows the figure.
func FormatXOF(amount float64) string {
	rounded := int64(math.Round(amount))
	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	digits := strconv.FormatInt(rounded, 10)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(" ")
		}
		b.WriteRune(d)
	}
	b.WriteString(" F CFA")

	return b.String()
}
