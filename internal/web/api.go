package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"svacron-metals/internal/chart"
	"svacron-metals/internal/metrics"
	"svacron-metals/internal/models"
	"svacron-metals/internal/services/derived"
	"svacron-metals/internal/services/goldhistory"
	"svacron-metals/internal/services/metaldata"
)

type metalResponse struct {
	Data   *models.MetalData `json:"data"`
	Report derived.Report    `json:"report"`
}

type chartResponse struct {
	Metal       models.MetalType        `json:"metal"`
	Window      string                  `json:"window"`
	Placeholder bool                    `json:"placeholder,omitempty"`
	Points      []models.ChartDataPoint `json:"points"`
}

type goldHistoryResponse struct {
	UnitGrams int                     `json:"unitGrams"`
	Stats     goldhistory.Stats       `json:"stats"`
	Years     []goldhistory.YearPrice `json:"years"`
}

type healthResponse struct {
	Healthy          bool    `json:"healthy"`
	Version          string  `json:"version"`
	UptimeSeconds    int64   `json:"uptime_seconds"`
	FetchesPerSecond float64 `json:"fetches_per_second"`
	TotalFetches     int64   `json:"total_fetches"`
	CacheTier        string  `json:"cache_tier,omitempty"`
	CacheHitRatio    float64 `json:"cache_hit_ratio"`
}

func (s *Server) handleAPIMetals(w http.ResponseWriter, r *http.Request) {
	all, err := s.data.GetAllMetals(r.Context())
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleAPIMetal(w http.ResponseWriter, r *http.Request) {
	metal, data, ok := s.loadMetal(w, r)
	if !ok {
		return
	}

	opts := s.profiles.Get(metal).ReportOptions(s.opts.Now(), s.opts.Locale)
	writeJSON(w, http.StatusOK, metalResponse{
		Data:   data,
		Report: derived.Build(data, opts),
	})
}

func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	window, ok := requestedWindow(w, r)
	if !ok {
		return
	}
	metal, data, ok := s.loadMetal(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, chartResponse{
		Metal:       metal,
		Window:      window.Key,
		Placeholder: data.Placeholder,
		Points:      derived.SeriesFor(data, window, s.opts.Now(), s.opts.Locale),
	})
}

func (s *Server) handleAPIChartPNG(w http.ResponseWriter, r *http.Request) {
	window, ok := requestedWindow(w, r)
	if !ok {
		return
	}
	metal, data, ok := s.loadMetal(w, r)
	if !ok {
		return
	}

	points := derived.SeriesFor(data, window, s.opts.Now(), s.opts.Locale)
	if len(points) < 2 {
		writeJSONError(w, http.StatusNotFound, "no data for this period")
		return
	}

	profile := s.profiles.Get(metal)
	png, err := chart.RenderPriceChart(points, chart.Options{
		Title: fmt.Sprintf("%s price (%s)", profile.Name, window.Key),
		Color: profile.Color,
	})
	if err != nil {
		s.logger.WithError(err).WithField("metal", metal).Error("Failed to render chart")
		writeJSONError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(metaldata.DefaultTTL/time.Second)))
	_, _ = w.Write(png)
}

func (s *Server) handleAPIGoldHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSONError(w, http.StatusNotFound, "gold history is not available")
		return
	}

	writeJSON(w, http.StatusOK, goldHistoryResponse{
		UnitGrams: s.history.UnitGrams,
		Stats:     s.history.Stats(),
		Years:     s.history.Years(goldhistory.ParseOrder(r.URL.Query().Get("order"))),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Healthy:          true,
		Version:          s.opts.Version,
		UptimeSeconds:    int64(time.Since(s.startTime).Seconds()),
		FetchesPerSecond: metrics.GetFetchesPerSecond(),
		TotalFetches:     metrics.TotalFetches(),
		CacheTier:        s.opts.CacheTier,
	}
	if s.opts.CacheTier != "" {
		resp.CacheHitRatio = metrics.CacheHitRatioFor(s.opts.CacheTier)
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadMetal resolves the {metal} path value and fetches it, writing the
// error response itself when either step fails
func (s *Server) loadMetal(w http.ResponseWriter, r *http.Request) (models.MetalType, *models.MetalData, bool) {
	metal, ok := models.ParseMetalType(r.PathValue("metal"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("unknown metal %q", r.PathValue("metal")))
		return "", nil, false
	}

	data, err := s.data.GetMetal(r.Context(), metal)
	if err != nil {
		s.writeAPIError(w, err)
		return "", nil, false
	}
	return metal, data, true
}

func requestedWindow(w http.ResponseWriter, r *http.Request) (derived.Window, bool) {
	key := r.URL.Query().Get("window")
	if key == "" {
		key = derived.DefaultWindow
	}
	window, ok := derived.ParseWindow(key)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown window %q", key))
		return derived.Window{}, false
	}
	return window, true
}

func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, metaldata.ErrUnknownMetal):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, metaldata.ErrFetchFailure):
		writeJSONError(w, http.StatusBadGateway, "upstream pricing API unavailable")
	default:
		s.logger.WithError(err).Error("Unexpected API error")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
