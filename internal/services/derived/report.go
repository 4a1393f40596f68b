package derived

import (
	"time"

	"github.com/shopspring/decimal"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
)

// ReportOptions configures Build for one metal
type ReportOptions struct {
	Purities      []Purity
	Weights       []Weight
	BasisGrams    decimal.Decimal
	SummaryWindow int
	WeightRows    int
	AsOf          time.Time
	Locale        format.Locale
}

// Report bundles every derived figure the metal pages render
type Report struct {
	Metal       string                             `json:"metal"`
	LastUpdated time.Time                          `json:"lastUpdated"`
	Placeholder bool                               `json:"placeholder,omitempty"`
	Rates       []models.MetalRate                 `json:"rates"`
	Summary     Summary                            `json:"summary"`
	Purity      PurityTable                        `json:"purity"`
	Weights     []WeightRow                        `json:"weights"`
	Charts      map[string][]models.ChartDataPoint `json:"charts"`
}

// Build derives the full report from a fetched payload
func Build(data *models.MetalData, opts ReportOptions) Report {
	if data == nil {
		data = &models.MetalData{}
	}

	purity := ScaleByPurity(data.History.OneMonth, opts.SummaryWindow, opts.Purities)

	return Report{
		Metal:       data.Metal,
		LastUpdated: data.LastUpdated,
		Placeholder: data.Placeholder,
		Rates:       data.Rates,
		Summary:     purity.Summary,
		Purity:      purity,
		Weights:     ScaleByWeight(data.History.OneMonth, opts.Weights, opts.BasisGrams, opts.WeightRows),
		Charts:      ChartSeries(data, opts.AsOf, opts.Locale),
	}
}
