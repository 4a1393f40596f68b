package metaldata

import (
	"time"

	"github.com/shopspring/decimal"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
	"svacron-metals/internal/purity"
	"svacron-metals/internal/services/derived"
	"svacron-metals/internal/services/profiles"
)

const placeholderDays = 30

// placeholderSwings is a fixed daily move pattern in basis points
var placeholderSwings = []int64{12, -8, 5, 20, -15, 3, -4, 9, -11, 7}

// Placeholder builds deterministic stand-in data for a metal. The result is
// flagged so pages can label it and the cache never stores it.
func Placeholder(profile profiles.Profile, asOf time.Time) *models.MetalData {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	base := profile.BasePrice
	if !base.IsPositive() {
		base = decimal.NewFromInt(100)
	}

	// Walk forward from the oldest day so every change matches its predecessor
	ascending := make([]models.HistoryEntry, 0, placeholderDays)
	price := base
	for i := 0; i < placeholderDays; i++ {
		date := day.AddDate(0, 0, i-placeholderDays+1)
		change := decimal.Zero
		if i > 0 {
			bps := decimal.NewFromInt(placeholderSwings[i%len(placeholderSwings)])
			change = price.Mul(bps).Div(decimal.NewFromInt(10000)).Round(2)
		}
		prev := price
		price = price.Add(change)
		ascending = append(ascending, models.HistoryEntry{
			Date:          date.Format(models.DateLayout),
			Price:         price,
			Change:        change,
			ChangePercent: format.PercentChange(change, prev).Round(2),
		})
	}

	history := make([]models.HistoryEntry, len(ascending))
	for i, e := range ascending {
		history[len(ascending)-1-i] = e
	}
	latest := history[0]

	unit := "₹ " + purity.UnitLabel(string(profile.Metal))
	rates := make([]models.MetalRate, 0, len(profile.Purities))
	for _, p := range profile.Purities {
		rates = append(rates, models.MetalRate{
			Purity:        p.Code,
			Price:         latest.Price.Mul(p.Multiplier).Round(2),
			Unit:          unit,
			Change:        latest.Change.Mul(p.Multiplier).Round(2),
			ChangePercent: latest.ChangePercent,
		})
	}

	yearly := make(map[string][]models.ChartDataPoint, len(derived.Windows()))
	for _, w := range derived.Windows() {
		yearly[w.Key] = []models.ChartDataPoint{}
	}

	return &models.MetalData{
		Metal:       profile.Metal.Title(),
		LastUpdated: day,
		Rates:       rates,
		History: models.History{
			OneMonth: history,
			Yearly:   yearly,
		},
		Placeholder: true,
	}
}
