// Package format renders prices, deltas and dates for display.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"svacron-metals/internal/models"
)

const rupee = "₹"

var hundred = decimal.NewFromInt(100)

// Rupee renders d with a fixed number of decimals and Indian digit grouping
// ("₹1,23,456.78").
func Rupee(d decimal.Decimal, places int32) string {
	return rupee + Grouped(d, places)
}

// RupeeMax rounds to at most maxPlaces decimals and drops trailing zeros
// ("₹6,450", "₹82.5").
func RupeeMax(d decimal.Decimal, maxPlaces int32) string {
	s := Grouped(d, maxPlaces)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return rupee + s
}

// SignedRupee prefixes non-negative values with "+" ("+₹12.30", "-₹4.00")
func SignedRupee(d decimal.Decimal, places int32) string {
	if d.Round(places).IsNegative() {
		return "-" + Rupee(d.Abs(), places)
	}
	return "+" + Rupee(d, places)
}

// SignedPercent renders a percentage with two decimals and an explicit sign
func SignedPercent(d decimal.Decimal) string {
	if d.Round(2).IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

// Percent renders |d| with two decimals, for use next to an arrow
func Percent(d decimal.Decimal) string {
	return d.Abs().StringFixed(2) + "%"
}

// Grouped renders d with the lakh/crore grouping used in India
func Grouped(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if sign == "-" && strings.Trim(intPart+frac, "0.") == "" {
		sign = ""
	}
	return sign + groupIndian(intPart) + frac
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}

// PercentChange returns change / base * 100, or zero when base is not positive
func PercentChange(change, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return change.Div(base).Mul(hundred)
}

// DisplayDate renders a wire date ("2024-01-05") as "05 Jan 2024". Dates that
// do not parse are returned unchanged.
func DisplayDate(date string, locale Locale) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	months := locale.shortMonths()
	if locale == LocaleUS {
		return months[t.Month()-1] + " " + t.Format("02, 2006")
	}
	return t.Format("02") + " " + months[t.Month()-1] + " " + t.Format("2006")
}
