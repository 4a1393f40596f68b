package metaldata

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svacron-metals/internal/models"
)

const goldBody = `{
	"name": "Gold",
	"lastUpdated": "2024-03-10T09:30:00Z",
	"rates": [
		{"purity": "999", "price": 6500.5, "change": 12.25, "changePercent": 0.19},
		{"purity": "916", "price": 5958.79}
	],
	"history": [
		{"date": "2024-03-10", "price": 6500.5, "change": 12.25},
		{"date": "2024-03-09", "price": 6488.25, "change": -3, "changePercent": -0.05}
	],
	"chartData": {
		"1Y": [{"date": "2023-04-01", "price": 5900}]
	}
}`

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL + "/", RateLimit: 100}, testLogger())
}

func TestClient_GetMetalData(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, goldBody)
	})

	data, err := client.GetMetalData(context.Background(), models.Gold)
	require.NoError(t, err)

	assert.Equal(t, "/metals/gold", gotPath)
	assert.Equal(t, "Gold", data.Metal)
	assert.Equal(t, 2024, data.LastUpdated.Year())
	require.Len(t, data.Rates, 2)
	assert.Equal(t, "6500.5", data.Rates[0].Price.String())
	assert.Equal(t, "₹ per gram", data.Rates[0].Unit)
	assert.True(t, data.Rates[1].Change.IsZero(), "missing change defaults to zero")
	assert.True(t, data.Rates[1].ChangePercent.IsZero())

	require.Len(t, data.History.OneMonth, 2)
	assert.True(t, data.History.OneMonth[0].ChangePercent.IsZero(), "missing changePercent defaults to zero")
	assert.Equal(t, "-0.05", data.History.OneMonth[1].ChangePercent.String())

	assert.Len(t, data.History.Yearly["1Y"], 1)
	for _, key := range []string{"3Y", "5Y", "10Y", "ALL"} {
		series, ok := data.History.Yearly[key]
		assert.True(t, ok, key)
		assert.Empty(t, series, key)
	}
}

func TestClient_SilverUnit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"name":"Silver","lastUpdated":"2024-03-10","rates":[{"purity":"999","price":780}],"history":[]}`)
	})

	data, err := client.GetMetalData(context.Background(), models.Silver)
	require.NoError(t, err)
	assert.Equal(t, "₹ per 10 gram", data.Rates[0].Unit)
	assert.Empty(t, data.History.OneMonth)
}

func TestClient_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetMetalData(context.Background(), models.Platinum)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailure)
	assert.NotErrorIs(t, err, ErrMalformedResponse)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "platinum", fetchErr.Metal)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, "http_error", fetchErr.FetchOutcome())
	assert.Contains(t, err.Error(), "Service Unavailable")
}

func TestClient_MalformedResponses(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"missing name", `{"lastUpdated":"2024-03-10","rates":[{"purity":"999","price":1}],"history":[]}`},
		{"missing rates", `{"name":"Gold","lastUpdated":"2024-03-10","history":[]}`},
		{"empty rates", `{"name":"Gold","lastUpdated":"2024-03-10","rates":[],"history":[]}`},
		{"rate without price", `{"name":"Gold","lastUpdated":"2024-03-10","rates":[{"purity":"999"}],"history":[]}`},
		{"missing history", `{"name":"Gold","lastUpdated":"2024-03-10","rates":[{"purity":"999","price":1}]}`},
		{"bad history date", `{"name":"Gold","lastUpdated":"2024-03-10","rates":[{"purity":"999","price":1}],"history":[{"date":"10/03/2024","price":1}]}`},
		{"bad timestamp", `{"name":"Gold","lastUpdated":"yesterday","rates":[{"purity":"999","price":1}],"history":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := client.GetMetalData(context.Background(), models.Gold)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.ErrorIs(t, err, ErrFetchFailure)

			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, "malformed", fetchErr.FetchOutcome())
		})
	}
}

func TestClient_UnknownMetal(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.GetMetalData(context.Background(), models.MetalType("copper"))
	assert.ErrorIs(t, err, ErrUnknownMetal)
	assert.False(t, called)
}

func TestClient_GetAllMetalsData(t *testing.T) {
	silver := `{"name":"Silver","lastUpdated":"2024-03-10","rates":[{"purity":"999","price":780}],"history":[]}`
	platinum := `{"name":"Platinum","lastUpdated":"2024-03-10","rates":[{"purity":"999","price":3200}],"history":[]}`

	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"gold":`+goldBody+`,"silver":`+silver+`,"platinum":`+platinum+`}`)
	})

	all, err := client.GetAllMetalsData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/metals", gotPath)
	require.Len(t, all, 3)
	assert.Equal(t, "Gold", all[models.Gold].Metal)
	assert.Equal(t, "Silver", all[models.Silver].Metal)
	assert.Equal(t, "3200", all[models.Platinum].Rates[0].Price.String())
}

func TestClient_GetAllMetalsDataMissingMetal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"gold":`+goldBody+`}`)
	})

	_, err := client.GetAllMetalsData(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "all", fetchErr.Metal)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(ClientConfig{BaseURL: url, RateLimit: 100}, testLogger())
	_, err := client.GetMetalData(context.Background(), models.Gold)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailure)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 0, fetchErr.StatusCode)
	assert.Equal(t, "network", fetchErr.FetchOutcome())
}
