// Package purity maps raw purity codes to display labels and units.
package purity

import (
	"strings"
)

var labels = map[string]string{
	// Gold
	"999": "24K (999)",
	"916": "22K (916)",
	"750": "18K (750)",
	"585": "14K (585)",

	// Silver
	"925": "Sterling (925)",

	// Platinum
	"950": "Platinum 950",
	"900": "Platinum 900",
}

var shortLabels = map[string]string{
	"999": "24K",
	"916": "22K",
	"750": "18K",
	"585": "14K",
	"925": "925",
	"950": "950",
	"900": "900",
}

// FormatLabel converts a purity code such as "916" into its display label.
// Silver 999 is shown as "Pure (999)" rather than as a karat grade. Unknown
// codes render as "{code} Purity".
func FormatLabel(code string, metal ...string) string {
	if len(metal) > 0 && strings.EqualFold(strings.TrimSpace(metal[0]), "silver") && code == "999" {
		return "Pure (999)"
	}
	if label, ok := labels[code]; ok {
		return label
	}
	return code + " Purity"
}

// ShortLabel returns the compact label ("24K", "925"), or the code itself
func ShortLabel(code string) string {
	if label, ok := shortLabels[code]; ok {
		return label
	}
	return code
}

// UnitLabel returns the quoting unit for a metal. Silver is quoted per 10
// grams, everything else per gram. The purity argument is accepted for
// per-purity overrides and is currently ignored.
func UnitLabel(metal string, purity ...string) string {
	if strings.EqualFold(strings.TrimSpace(metal), "silver") {
		return "per 10 gram"
	}
	return "per gram"
}
