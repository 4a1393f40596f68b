package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MetalType identifies one of the supported metals
type MetalType string

const (
	Gold     MetalType = "gold"
	Silver   MetalType = "silver"
	Platinum MetalType = "platinum"
)

// AllMetals returns the supported metals in display order
func AllMetals() []MetalType {
	return []MetalType{Gold, Silver, Platinum}
}

// ParseMetalType accepts any casing of a supported metal name
func ParseMetalType(s string) (MetalType, bool) {
	m := MetalType(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Gold, Silver, Platinum:
		return m, true
	}
	return "", false
}

func (m MetalType) String() string {
	return string(m)
}

// Title returns the capitalised display name ("Gold")
func (m MetalType) Title() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// MetalRate is the current snapshot for one purity
type MetalRate struct {
	Purity        string          `json:"purity"`
	Price         decimal.Decimal `json:"price"`
	Unit          string          `json:"unit"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

// HistoryEntry is one day's observation for the reference purity
type HistoryEntry struct {
	Date          string          `json:"date"` // YYYY-MM-DD
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

// Time parses Date; the zero time is returned for malformed dates
func (e HistoryEntry) Time() time.Time {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DateLayout is the calendar date format used on the wire
const DateLayout = "2006-01-02"

// ChartDataPoint is the reduced form consumed by charts
type ChartDataPoint struct {
	Date  string          `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// History groups the daily series with the coarser per-window series
type History struct {
	OneMonth []HistoryEntry             `json:"oneMonth"`
	Yearly   map[string][]ChartDataPoint `json:"yearly"`
}

// MetalData is the aggregate fetched for a single metal
type MetalData struct {
	Metal       string      `json:"metal"`
	LastUpdated time.Time   `json:"lastUpdated"`
	Rates       []MetalRate `json:"rates"`
	History     History     `json:"history"`

	// Placeholder marks synthetic data substituted after a failed fetch
	Placeholder bool `json:"placeholder,omitempty"`
}

// PrimaryRate returns rates[0], the reference purity
func (d *MetalData) PrimaryRate() (MetalRate, bool) {
	if d == nil || len(d.Rates) == 0 {
		return MetalRate{}, false
	}
	return d.Rates[0], true
}

// LowestRate returns the last rate in the list (lowest purity)
func (d *MetalData) LowestRate() (MetalRate, bool) {
	if d == nil || len(d.Rates) == 0 {
		return MetalRate{}, false
	}
	return d.Rates[len(d.Rates)-1], true
}
