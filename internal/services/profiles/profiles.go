// Package profiles holds the per-metal presentation settings: which purities
// are derived from the reference price, which weights appear in the weight
// table, and the unit the upstream history is quoted in.
package profiles

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
	"svacron-metals/internal/services/derived"
)

// Purity describes one derived purity column
type Purity struct {
	Code       string          `yaml:"code"`
	Label      string          `yaml:"label"`
	Multiplier decimal.Decimal `yaml:"multiplier"`
}

// Weight describes one column of the weight table
type Weight struct {
	Grams decimal.Decimal `yaml:"grams"`
	Label string          `yaml:"label"`
}

// Profile is the presentation configuration for a single metal
type Profile struct {
	Metal models.MetalType `yaml:"metal"`
	Name  string           `yaml:"name"`
	Color string           `yaml:"color"`

	// HistoryBasisGrams is the quantity the upstream history price refers to
	// (10 for a per-10-gram quote, 1 for per gram).
	HistoryBasisGrams decimal.Decimal `yaml:"history_basis_grams"`

	Purities      []Purity        `yaml:"purities"`
	Weights       []Weight        `yaml:"weights"`
	SummaryWindow int             `yaml:"summary_window"`
	WeightRows    int             `yaml:"weight_rows"`
	BasePrice     decimal.Decimal `yaml:"base_price"`
}

// Set maps each metal to its profile
type Set map[models.MetalType]Profile

// Get returns the profile for a metal, falling back to the built-in default
func (s Set) Get(metal models.MetalType) Profile {
	if p, ok := s[metal]; ok {
		return p
	}
	return Defaults()[metal]
}

// Validate checks the invariants the derived tables rely on
func (p Profile) Validate() error {
	if _, ok := models.ParseMetalType(string(p.Metal)); !ok {
		return fmt.Errorf("unknown metal %q", p.Metal)
	}
	if !p.HistoryBasisGrams.IsPositive() {
		return fmt.Errorf("%s: history_basis_grams must be positive", p.Metal)
	}
	if len(p.Purities) == 0 {
		return fmt.Errorf("%s: at least one purity is required", p.Metal)
	}
	one := decimal.NewFromInt(1)
	for _, pu := range p.Purities {
		if !pu.Multiplier.IsPositive() || pu.Multiplier.GreaterThan(one) {
			return fmt.Errorf("%s: purity %q multiplier %s outside (0,1]", p.Metal, pu.Label, pu.Multiplier)
		}
	}
	for _, w := range p.Weights {
		if !w.Grams.IsPositive() {
			return fmt.Errorf("%s: weight %q must be positive", p.Metal, w.Label)
		}
	}
	if p.SummaryWindow <= 0 || p.WeightRows <= 0 {
		return fmt.Errorf("%s: summary_window and weight_rows must be positive", p.Metal)
	}
	return nil
}

func standardWeights() []Weight {
	return []Weight{
		{Grams: decimal.NewFromInt(1), Label: "1 gram"},
		{Grams: decimal.NewFromInt(8), Label: "8 grams"},
		{Grams: decimal.NewFromInt(100), Label: "100 grams"},
		{Grams: decimal.NewFromInt(1000), Label: "1 kg"},
	}
}

// Defaults returns the built-in profiles. Silver history is quoted per 10
// grams; gold and platinum per gram.
func Defaults() Set {
	return Set{
		models.Gold: {
			Metal:             models.Gold,
			Name:              "Gold",
			Color:             "#FFD700",
			HistoryBasisGrams: decimal.NewFromInt(1),
			Purities: []Purity{
				{Code: "999", Label: "24K Price", Multiplier: decimal.NewFromInt(1)},
				{Code: "916", Label: "22K Price", Multiplier: decimal.NewFromInt(11).Div(decimal.NewFromInt(12))},
				{Code: "750", Label: "18K Price", Multiplier: decimal.RequireFromString("0.75")},
			},
			Weights:       standardWeights(),
			SummaryWindow: 30,
			WeightRows:    10,
			BasePrice:     decimal.NewFromInt(6450),
		},
		models.Silver: {
			Metal:             models.Silver,
			Name:              "Silver",
			Color:             "#C0C0C0",
			HistoryBasisGrams: decimal.NewFromInt(10),
			Purities: []Purity{
				{Code: "999", Label: "Pure (999) Price", Multiplier: decimal.NewFromInt(1)},
				{Code: "925", Label: "Sterling (925) Price", Multiplier: decimal.RequireFromString("0.925")},
			},
			Weights:       standardWeights(),
			SummaryWindow: 30,
			WeightRows:    10,
			BasePrice:     decimal.NewFromInt(780),
		},
		models.Platinum: {
			Metal:             models.Platinum,
			Name:              "Platinum",
			Color:             "#E5E4E2",
			HistoryBasisGrams: decimal.NewFromInt(1),
			Purities: []Purity{
				{Code: "999", Label: "999 Price", Multiplier: decimal.NewFromInt(1)},
				{Code: "950", Label: "950 Price", Multiplier: decimal.RequireFromString("0.95")},
				{Code: "900", Label: "900 Price", Multiplier: decimal.RequireFromString("0.90")},
			},
			Weights:       standardWeights(),
			SummaryWindow: 30,
			WeightRows:    10,
			BasePrice:     decimal.NewFromInt(3200),
		},
	}
}

// ReportOptions converts the profile into options for derived.Build
func (p Profile) ReportOptions(asOf time.Time, locale format.Locale) derived.ReportOptions {
	purities := make([]derived.Purity, 0, len(p.Purities))
	for _, pu := range p.Purities {
		purities = append(purities, derived.Purity{Label: pu.Label, Multiplier: pu.Multiplier})
	}
	weights := make([]derived.Weight, 0, len(p.Weights))
	for _, w := range p.Weights {
		weights = append(weights, derived.Weight{Label: w.Label, Grams: w.Grams})
	}

	return derived.ReportOptions{
		Purities:      purities,
		Weights:       weights,
		BasisGrams:    p.HistoryBasisGrams,
		SummaryWindow: p.SummaryWindow,
		WeightRows:    p.WeightRows,
		AsOf:          asOf,
		Locale:        locale,
	}
}
