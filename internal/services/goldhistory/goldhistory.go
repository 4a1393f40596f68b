// Package goldhistory serves the long-run yearly gold price series shown on
// the price history page.
package goldhistory

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"svacron-metals/internal/format"
)

//go:embed gold_history.yaml
var rawHistory []byte

// YearPrice is the average 24K price for one calendar year
type YearPrice struct {
	Year  int             `yaml:"year" json:"year"`
	Price decimal.Decimal `yaml:"price" json:"price"`

	// Change and ChangePercent are relative to the previous year in the
	// series, zero for the first year
	Change        decimal.Decimal `yaml:"-" json:"change"`
	ChangePercent decimal.Decimal `yaml:"-" json:"changePercent"`
}

// Stats summarises the whole series
type Stats struct {
	First         YearPrice       `json:"first"`
	Last          YearPrice       `json:"last"`
	TotalGrowth   decimal.Decimal `json:"totalGrowth"`
	GrowthPercent decimal.Decimal `json:"growthPercent"`
	SpanYears     int             `json:"spanYears"`
}

type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// ParseOrder accepts "asc" or "desc"; anything else is newest first
func ParseOrder(s string) Order {
	if Order(s) == Ascending {
		return Ascending
	}
	return Descending
}

type Dataset struct {
	UnitGrams int
	years     []YearPrice // ascending
}

type file struct {
	UnitGrams int         `yaml:"unit_grams"`
	Years     []YearPrice `yaml:"years"`
}

// Load parses the embedded series
func Load() (*Dataset, error) {
	return Parse(rawHistory)
}

// Parse reads a yearly series, orders it by year and fills in the
// year-over-year changes
func Parse(data []byte) (*Dataset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse gold history: %w", err)
	}
	if len(f.Years) == 0 {
		return nil, fmt.Errorf("gold history has no years")
	}

	years := append([]YearPrice(nil), f.Years...)
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	for i := 1; i < len(years); i++ {
		if years[i].Year == years[i-1].Year {
			return nil, fmt.Errorf("duplicate year %d", years[i].Year)
		}
		prev := years[i-1].Price
		years[i].Change = years[i].Price.Sub(prev)
		years[i].ChangePercent = format.PercentChange(years[i].Change, prev).Round(2)
	}

	return &Dataset{UnitGrams: f.UnitGrams, years: years}, nil
}

// Years returns a copy of the series in the requested order
func (d *Dataset) Years(order Order) []YearPrice {
	out := make([]YearPrice, len(d.years))
	if order == Ascending {
		copy(out, d.years)
		return out
	}
	for i, y := range d.years {
		out[len(d.years)-1-i] = y
	}
	return out
}

// Stats compares the first and last years of the series
func (d *Dataset) Stats() Stats {
	first, last := d.years[0], d.years[len(d.years)-1]
	growth := last.Price.Sub(first.Price)

	return Stats{
		First:         first,
		Last:          last,
		TotalGrowth:   growth,
		GrowthPercent: format.PercentChange(growth, first.Price).Round(2),
		SpanYears:     last.Year - first.Year,
	}
}
