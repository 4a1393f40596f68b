package derived

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
)

type monthBucket struct {
	month time.Time
	sum   decimal.Decimal
	count int64
}

// BucketByMonth averages the entries dated on or after asOf minus
// lookbackMonths calendar months into one point per month, oldest month
// first. Prices are rounded to 2 decimals and labelled "Jan 24" in the given
// locale. lookbackMonths <= 0 keeps the whole history. Entries whose date
// does not parse are skipped.
func BucketByMonth(history []models.HistoryEntry, lookbackMonths int, asOf time.Time, locale format.Locale) []models.ChartDataPoint {
	var cutoff time.Time
	if lookbackMonths > 0 {
		y, m, d := asOf.Date()
		cutoff = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, -lookbackMonths, 0)
	}

	buckets := make(map[string]*monthBucket)
	for _, entry := range history {
		t := entry.Time()
		if t.IsZero() || t.Before(cutoff) {
			continue
		}

		key := fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
		b, ok := buckets[key]
		if !ok {
			b = &monthBucket{
				month: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC),
				sum:   decimal.Zero,
			}
			buckets[key] = b
		}
		b.sum = b.sum.Add(entry.Price)
		b.count++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]models.ChartDataPoint, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		points = append(points, models.ChartDataPoint{
			Date:  locale.MonthYear(b.month),
			Price: b.sum.Div(decimal.NewFromInt(b.count)).Round(2),
		})
	}

	return points
}
