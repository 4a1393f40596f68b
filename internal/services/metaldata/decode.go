package metaldata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"svacron-metals/internal/models"
	"svacron-metals/internal/purity"
	"svacron-metals/internal/services/derived"
)

// metalResponse is the wire shape of GET /metals/{metal}. Pointers separate
// missing fields from zero values.
type metalResponse struct {
	Name        *string                         `json:"name"`
	LastUpdated *string                         `json:"lastUpdated"`
	Rates       *[]rateResponse                 `json:"rates"`
	History     *[]historyResponse              `json:"history"`
	ChartData   map[string][]chartPointResponse `json:"chartData"`
}

type rateResponse struct {
	Purity        *string          `json:"purity"`
	Price         *decimal.Decimal `json:"price"`
	Unit          string           `json:"unit"`
	Change        *decimal.Decimal `json:"change"`
	ChangePercent *decimal.Decimal `json:"changePercent"`
}

type historyResponse struct {
	Date          *string          `json:"date"`
	Price         *decimal.Decimal `json:"price"`
	Change        *decimal.Decimal `json:"change"`
	ChangePercent *decimal.Decimal `json:"changePercent"`
}

type chartPointResponse struct {
	Date  *string          `json:"date"`
	Price *decimal.Decimal `json:"price"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	models.DateLayout,
}

// DecodeMetal validates a single-metal payload and converts it to MetalData.
// Missing history changePercent values default to 0 and missing chart
// windows to an empty series.
func DecodeMetal(body []byte, metal models.MetalType) (*models.MetalData, error) {
	var resp metalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	return resp.toModel(metal)
}

// DecodeAll validates the bulk payload keyed by metal name
func DecodeAll(body []byte) (map[models.MetalType]*models.MetalData, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}

	out := make(map[models.MetalType]*models.MetalData, len(models.AllMetals()))
	for _, metal := range models.AllMetals() {
		payload, ok := raw[string(metal)]
		if !ok || string(payload) == "null" {
			return nil, malformed("missing %s", metal)
		}
		data, err := DecodeMetal(payload, metal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", metal, err)
		}
		out[metal] = data
	}
	return out, nil
}

func (r *metalResponse) toModel(metal models.MetalType) (*models.MetalData, error) {
	if r.Name == nil || *r.Name == "" {
		return nil, malformed("name is required")
	}
	if r.LastUpdated == nil {
		return nil, malformed("lastUpdated is required")
	}
	lastUpdated, err := parseTimestamp(*r.LastUpdated)
	if err != nil {
		return nil, malformed("lastUpdated: %v", err)
	}
	if r.Rates == nil || len(*r.Rates) == 0 {
		return nil, malformed("at least one rate is required")
	}
	if r.History == nil {
		return nil, malformed("history is required")
	}

	data := &models.MetalData{
		Metal:       *r.Name,
		LastUpdated: lastUpdated,
		Rates:       make([]models.MetalRate, 0, len(*r.Rates)),
		History: models.History{
			OneMonth: make([]models.HistoryEntry, 0, len(*r.History)),
			Yearly:   make(map[string][]models.ChartDataPoint, len(derived.Windows())),
		},
	}

	unit := "₹ " + purity.UnitLabel(string(metal))
	for i, rate := range *r.Rates {
		if rate.Purity == nil || *rate.Purity == "" {
			return nil, malformed("rates[%d].purity is required", i)
		}
		if rate.Price == nil {
			return nil, malformed("rates[%d].price is required", i)
		}
		mr := models.MetalRate{
			Purity:        *rate.Purity,
			Price:         *rate.Price,
			Unit:          unit,
			Change:        orZero(rate.Change),
			ChangePercent: orZero(rate.ChangePercent),
		}
		if rate.Unit != "" {
			mr.Unit = rate.Unit
		}
		data.Rates = append(data.Rates, mr)
	}

	for i, h := range *r.History {
		if h.Date == nil {
			return nil, malformed("history[%d].date is required", i)
		}
		if _, err := time.Parse(models.DateLayout, *h.Date); err != nil {
			return nil, malformed("history[%d].date %q is not a calendar date", i, *h.Date)
		}
		if h.Price == nil {
			return nil, malformed("history[%d].price is required", i)
		}
		data.History.OneMonth = append(data.History.OneMonth, models.HistoryEntry{
			Date:          *h.Date,
			Price:         *h.Price,
			Change:        orZero(h.Change),
			ChangePercent: orZero(h.ChangePercent),
		})
	}

	for _, w := range derived.Windows() {
		points := r.ChartData[w.Key]
		series := make([]models.ChartDataPoint, 0, len(points))
		for i, p := range points {
			if p.Date == nil || p.Price == nil {
				return nil, malformed("chartData[%s][%d] needs date and price", w.Key, i)
			}
			series = append(series, models.ChartDataPoint{Date: *p.Date, Price: *p.Price})
		}
		data.History.Yearly[w.Key] = series
	}

	return data, nil
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
