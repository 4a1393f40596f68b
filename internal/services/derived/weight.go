package derived

import (
	"github.com/shopspring/decimal"

	"svacron-metals/internal/models"
)

// Weight is one column of the weight table
type Weight struct {
	Label string          `json:"label"`
	Grams decimal.Decimal `json:"grams"`
}

// WeightCell is the price and change for a quantity on one date
type WeightCell struct {
	Label  string          `json:"label"`
	Grams  decimal.Decimal `json:"grams"`
	Price  decimal.Decimal `json:"price"`
	Change decimal.Decimal `json:"change"`
}

// WeightRow is one date of the weight table
type WeightRow struct {
	Date          string          `json:"date"`
	PerGram       decimal.Decimal `json:"perGram"`
	PerGramChange decimal.Decimal `json:"perGramChange"`
	Cells         []WeightCell    `json:"cells"`
}

// ScaleByWeight converts the newest limit entries to a per-gram rate by
// dividing by basisGrams (the quantity the history price is quoted for) and
// multiplies that rate by each weight. A zero change stays exactly zero at
// every weight. A non-positive basis is treated as 1 gram and a non-positive
// limit keeps every entry.
func ScaleByWeight(history []models.HistoryEntry, weights []Weight, basisGrams decimal.Decimal, limit int) []WeightRow {
	if !basisGrams.IsPositive() {
		basisGrams = decimal.NewFromInt(1)
	}

	entries := window(SortDescending(history), limit)
	rows := make([]WeightRow, 0, len(entries))

	for _, entry := range entries {
		perGram := entry.Price.Div(basisGrams)
		perGramChange := decimal.Zero
		if !entry.Change.IsZero() {
			perGramChange = entry.Change.Div(basisGrams)
		}

		row := WeightRow{
			Date:          entry.Date,
			PerGram:       perGram,
			PerGramChange: perGramChange,
			Cells:         make([]WeightCell, 0, len(weights)),
		}
		for _, w := range weights {
			row.Cells = append(row.Cells, WeightCell{
				Label:  w.Label,
				Grams:  w.Grams,
				Price:  perGram.Mul(w.Grams),
				Change: perGramChange.Mul(w.Grams),
			})
		}
		rows = append(rows, row)
	}

	return rows
}
