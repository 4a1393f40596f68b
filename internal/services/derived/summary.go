package derived

import (
	"github.com/shopspring/decimal"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
)

// Summary is the oldest→latest change across a window of history
type Summary struct {
	Latest               *models.HistoryEntry `json:"latest"`
	Oldest               *models.HistoryEntry `json:"oldest"`
	OverallChange        decimal.Decimal      `json:"overallChange"`
	OverallChangePercent decimal.Decimal      `json:"overallChangePercent"`
	From                 string               `json:"from"`
	To                   string               `json:"to"`
	Days                 int                  `json:"days"`

	// Entries is the window itself, newest first
	Entries []models.HistoryEntry `json:"-"`
}

// Empty reports whether the window held no entries
func (s Summary) Empty() bool {
	return s.Latest == nil
}

// Summarize takes the newest windowSize entries and reports the change from
// the oldest to the latest of them. A zero oldest price yields 0%.
func Summarize(history []models.HistoryEntry, windowSize int) Summary {
	entries := window(SortDescending(history), windowSize)
	if len(entries) == 0 {
		return Summary{
			OverallChange:        decimal.Zero,
			OverallChangePercent: decimal.Zero,
		}
	}

	latest := entries[0]
	oldest := entries[len(entries)-1]
	change := latest.Price.Sub(oldest.Price)

	return Summary{
		Latest:               &latest,
		Oldest:               &oldest,
		OverallChange:        change,
		OverallChangePercent: format.PercentChange(change, oldest.Price),
		From:                 oldest.Date,
		To:                   latest.Date,
		Days:                 len(entries),
		Entries:              entries,
	}
}
