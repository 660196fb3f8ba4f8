package view

import (
	"strconv"
	"strings"
)

// minGrouped is the smallest magnitude that gets a thousands separator; the
// es-ES locale leaves four-digit amounts ungrouped.
const minGrouped = 10000

// FormatPrice renders whole pesos as "$50.000".
func FormatPrice(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	if amount >= minGrouped {
		digits = group(digits)
	}
	if neg {
		return "-$" + digits
	}
	return "$" + digits
}

func group(digits string) string {
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// TotalText is the footer line of both carts.
func TotalText(total int64) string {
	return "Total: " + FormatPrice(total)
}
