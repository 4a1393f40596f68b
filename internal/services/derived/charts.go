package derived

import (
	"time"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
)

// Window is a chart lookback selectable on the page
type Window struct {
	Key    string `json:"key"`
	Months int    `json:"months"` // 0 means no cutoff
}

var windows = []Window{
	{Key: "1Y", Months: 12},
	{Key: "3Y", Months: 36},
	{Key: "5Y", Months: 60},
	{Key: "10Y", Months: 120},
	{Key: "ALL", Months: 0},
}

// DefaultWindow is the window selected when none is requested
const DefaultWindow = "1Y"

// Windows returns the chart windows in display order
func Windows() []Window {
	out := make([]Window, len(windows))
	copy(out, windows)
	return out
}

// ParseWindow looks up a window by key ("1Y", "ALL", ...)
func ParseWindow(key string) (Window, bool) {
	for _, w := range windows {
		if w.Key == key {
			return w, true
		}
	}
	return Window{}, false
}

// SeriesFor returns the chart series for one window. When the upstream
// payload carries a series for the window it is used as-is apart from
// monthly bucketing; otherwise the series is derived from the daily history.
func SeriesFor(data *models.MetalData, w Window, asOf time.Time, locale format.Locale) []models.ChartDataPoint {
	if data == nil {
		return []models.ChartDataPoint{}
	}

	if upstream := data.History.Yearly[w.Key]; len(upstream) > 0 {
		entries := make([]models.HistoryEntry, 0, len(upstream))
		for _, p := range upstream {
			entries = append(entries, models.HistoryEntry{Date: p.Date, Price: p.Price})
		}
		return BucketByMonth(entries, 0, asOf, locale)
	}

	return BucketByMonth(data.History.OneMonth, w.Months, asOf, locale)
}

// ChartSeries returns every window's series keyed by window key
func ChartSeries(data *models.MetalData, asOf time.Time, locale format.Locale) map[string][]models.ChartDataPoint {
	out := make(map[string][]models.ChartDataPoint, len(windows))
	for _, w := range windows {
		out[w.Key] = SeriesFor(data, w, asOf, locale)
	}
	return out
}
