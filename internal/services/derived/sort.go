// Package derived turns a metal's raw rates and history into the figures
// shown on screen: windowed summaries, purity and weight tables, and
// month-bucketed chart series. Every function copies its input and never
// fails; short or empty histories produce empty results.
package derived

import (
	"sort"

	"svacron-metals/internal/models"
)

// SortDescending returns a copy of history ordered newest first. Entries
// sharing a date keep their input order.
func SortDescending(history []models.HistoryEntry) []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i], out[j])
	})
	return out
}

func newer(a, b models.HistoryEntry) bool {
	ta, tb := a.Time(), b.Time()
	if ta.IsZero() || tb.IsZero() {
		return a.Date > b.Date
	}
	return ta.After(tb)
}

// window returns at most size entries from the front of a sorted slice.
// A non-positive size keeps everything.
func window(sorted []models.HistoryEntry, size int) []models.HistoryEntry {
	if size <= 0 || size >= len(sorted) {
		return sorted
	}
	return sorted[:size]
}
