// Package format holds the canonical display formatting rules for the API.
// Every surface (tables, dashboard cards, exports) goes through these helpers
// so currency and percentage rendering stays uniform.
package format

import (
	"fmt"
	"strings"
)

// Currency renders a dollar amount with two decimals and thousands grouping,
// e.g. 1234.5 -> "$1,234.50".
func Currency(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	grouped := groupThousands(parts[0])
	out := "$" + grouped + "." + parts[1]
	if negative {
		return "-" + out
	}
	return out
}

// Percent renders a rate with one decimal, e.g. 85.714 -> "85.7%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Count renders an integer with thousands grouping.
func Count(n int) string {
	negative := n < 0
	if negative {
		n = -n
	}
	grouped := groupThousands(fmt.Sprintf("%d", n))
	if negative {
		return "-" + grouped
	}
	return grouped
}

// Number renders a float with the requested decimals and thousands grouping.
func Number(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	negative := v < 0
	if negative {
		v = -v
	}
	s := fmt.Sprintf("%.*f", decimals, v)
	parts := strings.SplitN(s, ".", 2)
	out := groupThousands(parts[0])
	if len(parts) == 2 {
		out += "." + parts[1]
	}
	if negative {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(n + n/3)
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
