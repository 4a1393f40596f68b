package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
	"svacron-metals/internal/services/goldhistory"
	"svacron-metals/internal/services/metaldata"
)

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

type fakeData struct {
	metals map[models.MetalType]*models.MetalData
	err    error
}

func (f *fakeData) GetMetal(_ context.Context, metal models.MetalType) (*models.MetalData, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.metals[metal]
	if !ok {
		return nil, fmt.Errorf("%w: %q", metaldata.ErrUnknownMetal, metal)
	}
	return data, nil
}

func (f *fakeData) GetAllMetals(_ context.Context) (map[models.MetalType]*models.MetalData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.metals, nil
}

// sampleMetal builds days of rising history ending on testNow, newest first
func sampleMetal(metal models.MetalType, days int) *models.MetalData {
	history := make([]models.HistoryEntry, 0, days)
	for i := 0; i < days; i++ {
		history = append(history, models.HistoryEntry{
			Date:   testNow.AddDate(0, 0, -i).Format(models.DateLayout),
			Price:  decimal.NewFromInt(int64(6500 - i)),
			Change: decimal.NewFromInt(1),
		})
	}

	return &models.MetalData{
		Metal:       metal.Title(),
		LastUpdated: testNow,
		Rates: []models.MetalRate{
			{Purity: "999", Price: decimal.NewFromInt(6500), Unit: "₹ per gram", Change: decimal.NewFromInt(1), ChangePercent: decimal.RequireFromString("0.02")},
			{Purity: "916", Price: decimal.RequireFromString("5958.33"), Unit: "₹ per gram"},
		},
		History: models.History{
			OneMonth: history,
			Yearly:   map[string][]models.ChartDataPoint{},
		},
	}
}

func allSamples(days int) map[models.MetalType]*models.MetalData {
	out := make(map[models.MetalType]*models.MetalData)
	for _, m := range models.AllMetals() {
		out[m] = sampleMetal(m, days)
	}
	return out
}

func newTestServer(t *testing.T, data DataSource) http.Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	history, err := goldhistory.Load()
	require.NoError(t, err)

	srv, err := NewServer(data, nil, history, Options{
		PublicURL: "https://metals.example.com",
		Locale:    format.LocaleIndia,
		Version:   "test",
		CacheTier: "memory",
		Now:       func() time.Time { return testNow },
	}, logger)
	require.NoError(t, err)
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func fetchFailure() error {
	return &metaldata.FetchError{Metal: "gold", StatusCode: http.StatusInternalServerError, Err: errors.New("upstream down")}
}

func TestHomePage(t *testing.T) {
	h := newTestServer(t, &fakeData{metals: allSamples(40)})

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Gold")
	assert.Contains(t, body, "Silver")
	assert.Contains(t, body, "Platinum")
	assert.Contains(t, body, "₹6,500")
	assert.Contains(t, body, `href="/silver-rate-today"`)
}

func TestMetalPage(t *testing.T) {
	h := newTestServer(t, &fakeData{metals: allSamples(40)})

	rec := get(t, h, "/gold-rate-today")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Gold Rate Today")
	assert.Contains(t, body, "24K Price")
	assert.Contains(t, body, "8 grams")
	assert.Contains(t, body, "1 kg")
	assert.Contains(t, body, "₹52,000.00", "8 grams at 6,500 per gram")
	assert.NotContains(t, body, "No data for this period")
}

func TestMetalPage_EmptyHistory(t *testing.T) {
	h := newTestServer(t, &fakeData{metals: allSamples(0)})

	rec := get(t, h, "/silver-rate-today")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data for this period")
}

func TestMetalPage_FetchFailure(t *testing.T) {
	h := newTestServer(t, &fakeData{err: fetchFailure()})

	rec := get(t, h, "/platinum-rate-today?window=5Y")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Try again")
	assert.Contains(t, body, `href="/platinum-rate-today?window=5Y"`)
}

func TestMetalPage_Placeholder(t *testing.T) {
	metals := allSamples(10)
	metals[models.Gold].Placeholder = true
	h := newTestServer(t, &fakeData{metals: metals})

	rec := get(t, h, "/gold-rate-today")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Indicative prices are shown")
}

func TestGoldHistoryPage(t *testing.T) {
	h := newTestServer(t, &fakeData{})

	rec := get(t, h, "/gold-price-history?order=asc")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "1964-2025")
	assert.Less(t, strings.Index(body, "<td>1964</td>"), strings.Index(body, "<td>2025</td>"))
	assert.Contains(t, body, `href="?order=desc"`)
}

func TestAPIMetal(t *testing.T) {
	h := newTestServer(t, &fakeData{metals: allSamples(40)})

	rec := get(t, h, "/api/v1/metals/gold")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Metal string `json:"metal"`
		} `json:"data"`
		Report struct {
			Summary struct {
				Days int `json:"days"`
			} `json:"summary"`
			Weights []json.RawMessage `json:"weights"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Gold", resp.Data.Metal)
	assert.Equal(t, 30, resp.Report.Summary.Days)
	assert.Len(t, resp.Report.Weights, 10)
}

func TestAPIErrors(t *testing.T) {
	ok := newTestServer(t, &fakeData{metals: allSamples(5)})
	down := newTestServer(t, &fakeData{err: fetchFailure()})

	cases := []struct {
		name   string
		h      http.Handler
		target string
		status int
	}{
		{"unknown metal", ok, "/api/v1/metals/copper", http.StatusNotFound},
		{"unknown window", ok, "/api/v1/metals/gold/chart?window=2Y", http.StatusBadRequest},
		{"upstream down", down, "/api/v1/metals/gold", http.StatusBadGateway},
		{"bulk upstream down", down, "/api/v1/metals", http.StatusBadGateway},
		{"chart without points", ok, "/api/v1/metals/gold/chart.png?window=ALL", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, tc.h, tc.target)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAPIChart(t *testing.T) {
	metals := allSamples(5)
	metals[models.Gold].History.Yearly["1Y"] = []models.ChartDataPoint{
		{Date: "2023-04-15", Price: decimal.NewFromInt(5900)},
		{Date: "2023-09-15", Price: decimal.NewFromInt(6100)},
		{Date: "2024-02-15", Price: decimal.NewFromInt(6400)},
	}
	h := newTestServer(t, &fakeData{metals: metals})

	rec := get(t, h, "/api/v1/metals/gold/chart")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1Y", resp.Window)
	require.Len(t, resp.Points, 3)
	assert.Equal(t, "Apr 23", resp.Points[0].Date)

	rec = get(t, h, "/api/v1/metals/gold/chart.png?window=1Y")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestAPIGoldHistory(t *testing.T) {
	h := newTestServer(t, &fakeData{})

	rec := get(t, h, "/api/v1/gold-history?order=desc")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UnitGrams int `json:"unitGrams"`
		Years     []struct {
			Year int `json:"year"`
		} `json:"years"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.UnitGrams)
	require.NotEmpty(t, resp.Years)
	assert.Equal(t, 2025, resp.Years[0].Year)
}

func TestSitemap(t *testing.T) {
	h := newTestServer(t, &fakeData{})

	rec := get(t, h, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<loc>https://metals.example.com/gold-rate-today</loc>")
	assert.Contains(t, body, "<loc>https://metals.example.com/gold-price-history</loc>")
	assert.Contains(t, body, "<lastmod>2024-03-10</lastmod>")
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakeData{})

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Healthy)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "memory", resp.CacheTier)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, &fakeData{})

	rec := get(t, h, "/health")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t, &fakeData{})

	rec := get(t, h, "/copper-rate-today")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
