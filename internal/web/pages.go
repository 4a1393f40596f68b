package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"svacron-metals/internal/models"
	"svacron-metals/internal/services/derived"
	"svacron-metals/internal/services/goldhistory"
	"svacron-metals/internal/services/metaldata"
	"svacron-metals/internal/services/profiles"
)

type metalCard struct {
	Metal       models.MetalType
	Name        string
	Color       string
	Path        string
	Primary     models.MetalRate
	Lowest      models.MetalRate
	ShowLowest  bool
	Placeholder bool
}

type homeView struct {
	page
	Cards       []metalCard
	LastUpdated time.Time
	Placeholder bool
}

type windowLink struct {
	Key      string
	Selected bool
}

type metalView struct {
	page
	MetalKey string
	Name     string
	Color    string
	Profile  profiles.Profile
	Report   derived.Report
	Window   string
	Windows  []windowLink
	Series   []models.ChartDataPoint
}

// HasChart reports whether the selected window has enough points to draw
func (v metalView) HasChart() bool {
	return len(v.Series) >= 2
}

type historyView struct {
	page
	Stats     goldhistory.Stats
	Years     []goldhistory.YearPrice
	Order     goldhistory.Order
	NextOrder goldhistory.Order
	UnitGrams int
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	all, err := s.data.GetAllMetals(r.Context())
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}

	view := homeView{
		page: s.newPage(
			"Gold, Silver & Platinum Rates Today in India",
			"Live gold, silver and platinum prices in India with daily changes.",
			"/",
		),
	}
	for _, metal := range models.AllMetals() {
		data, ok := all[metal]
		if !ok {
			continue
		}
		profile := s.profiles.Get(metal)
		card := metalCard{
			Metal:       metal,
			Name:        profile.Name,
			Color:       profile.Color,
			Path:        metalPath(metal),
			Placeholder: data.Placeholder,
		}
		card.Primary, _ = data.PrimaryRate()
		card.Lowest, _ = data.LowestRate()
		card.ShowLowest = len(data.Rates) > 1
		view.Cards = append(view.Cards, card)

		if data.LastUpdated.After(view.LastUpdated) {
			view.LastUpdated = data.LastUpdated
		}
		view.Placeholder = view.Placeholder || data.Placeholder
	}

	s.renderPage(w, r, "home", http.StatusOK, "ok", view)
}

func (s *Server) handleMetalPage(metal models.MetalType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := s.data.GetMetal(r.Context(), metal)
		if err != nil {
			s.renderFetchError(w, r, err)
			return
		}

		profile := s.profiles.Get(metal)
		report := derived.Build(data, profile.ReportOptions(s.opts.Now(), s.opts.Locale))

		window := r.URL.Query().Get("window")
		if _, ok := derived.ParseWindow(window); !ok {
			window = derived.DefaultWindow
		}

		view := metalView{
			page: s.newPage(
				fmt.Sprintf("%s Rate Today in India", profile.Name),
				fmt.Sprintf("Today's %s price in India by purity and weight, with %d-day history.",
					profile.Name, profile.SummaryWindow),
				metalPath(metal),
			),
			MetalKey: string(metal),
			Name:     profile.Name,
			Color:    profile.Color,
			Profile:  profile,
			Report:   report,
			Window:   window,
			Series:   report.Charts[window],
		}
		for _, win := range derived.Windows() {
			view.Windows = append(view.Windows, windowLink{Key: win.Key, Selected: win.Key == window})
		}

		state := "ok"
		if report.Summary.Empty() {
			state = "no_data"
		}
		s.renderPage(w, r, "metal", http.StatusOK, state, view)
	}
}

func (s *Server) handleGoldHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.renderError(w, r, http.StatusNotFound, "Gold price history is not available.")
		return
	}

	order := goldhistory.ParseOrder(r.URL.Query().Get("order"))
	next := goldhistory.Ascending
	if order == goldhistory.Ascending {
		next = goldhistory.Descending
	}

	stats := s.history.Stats()
	view := historyView{
		page: s.newPage(
			fmt.Sprintf("Gold Price History in India (%d-%d)", stats.First.Year, stats.Last.Year),
			fmt.Sprintf("Yearly 24 karat gold prices in India per %d grams since %d.", s.history.UnitGrams, stats.First.Year),
			"/gold-price-history",
		),
		Stats:     stats,
		Years:     s.history.Years(order),
		Order:     order,
		NextOrder: next,
		UnitGrams: s.history.UnitGrams,
	}

	s.renderPage(w, r, "history", http.StatusOK, "ok", view)
}

func (s *Server) renderFetchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, metaldata.ErrUnknownMetal):
		s.renderError(w, r, http.StatusNotFound, "We do not track that metal.")
	case errors.Is(err, metaldata.ErrFetchFailure):
		s.renderError(w, r, http.StatusBadGateway, "We could not load the latest prices. Please try again in a moment.")
	default:
		s.logger.WithError(err).Error("Unexpected error loading metal data")
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong while loading prices.")
	}
}
