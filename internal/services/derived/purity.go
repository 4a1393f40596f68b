package derived

import (
	"github.com/shopspring/decimal"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
)

// Purity scales the reference price to a lower fineness
type Purity struct {
	Label      string          `json:"label"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// PurityCell is one purity's price on one date, with the day-over-day change
type PurityCell struct {
	Label  string          `json:"label"`
	Price  decimal.Decimal `json:"price"`
	Change decimal.Decimal `json:"change"`
}

// PurityRow is one date across all purities
type PurityRow struct {
	Date  string       `json:"date"`
	Cells []PurityCell `json:"cells"`
}

// PurityAggregate is the window-level oldest→latest change for a purity
type PurityAggregate struct {
	Label         string          `json:"label"`
	OldestPrice   decimal.Decimal `json:"oldestPrice"`
	LatestPrice   decimal.Decimal `json:"latestPrice"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

// PurityTable holds the per-date rows and the per-purity window aggregates.
// Row changes are against the previous day; aggregate changes are against
// the window's oldest entry.
type PurityTable struct {
	Summary    Summary           `json:"summary"`
	Rows       []PurityRow       `json:"rows"`
	Aggregates []PurityAggregate `json:"aggregates"`
}

// ScaleByPurity multiplies each entry of the newest windowSize entries by
// every purity's multiplier.
func ScaleByPurity(history []models.HistoryEntry, windowSize int, purities []Purity) PurityTable {
	summary := Summarize(history, windowSize)
	table := PurityTable{
		Summary:    summary,
		Rows:       make([]PurityRow, 0, len(summary.Entries)),
		Aggregates: make([]PurityAggregate, 0, len(purities)),
	}

	for _, entry := range summary.Entries {
		row := PurityRow{
			Date:  entry.Date,
			Cells: make([]PurityCell, 0, len(purities)),
		}
		for _, p := range purities {
			row.Cells = append(row.Cells, PurityCell{
				Label:  p.Label,
				Price:  entry.Price.Mul(p.Multiplier),
				Change: entry.Change.Mul(p.Multiplier),
			})
		}
		table.Rows = append(table.Rows, row)
	}

	if summary.Empty() {
		return table
	}

	for _, p := range purities {
		oldest := summary.Oldest.Price.Mul(p.Multiplier)
		latest := summary.Latest.Price.Mul(p.Multiplier)
		change := latest.Sub(oldest)
		table.Aggregates = append(table.Aggregates, PurityAggregate{
			Label:         p.Label,
			OldestPrice:   oldest,
			LatestPrice:   latest,
			Change:        change,
			ChangePercent: format.PercentChange(change, oldest),
		})
	}

	return table
}
