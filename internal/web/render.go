package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"svacron-metals/internal/format"
	"svacron-metals/internal/metrics"
	"svacron-metals/internal/purity"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "metal", "history", "error"}

// page carries the fields every layout render needs
type page struct {
	Title       string
	Description string
	Canonical   string
	Lang        string
	Year        int
}

type errorView struct {
	page
	Status   int
	Message  string
	RetryURL string
}

func parsePages(funcs template.FuncMap) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

func (s *Server) templateFuncs() template.FuncMap {
	locale := s.opts.Locale
	return template.FuncMap{
		"rupee":         func(d decimal.Decimal) string { return format.Rupee(d, 2) },
		"rupeeMax":      func(d decimal.Decimal) string { return format.RupeeMax(d, 2) },
		"signedRupee":   func(d decimal.Decimal) string { return format.SignedRupee(d, 2) },
		"signedPercent": format.SignedPercent,
		"displayDate":   func(date string) string { return format.DisplayDate(date, locale) },
		"updatedAt":     func(t time.Time) string { return locale.UpdatedAt(t) },
		"purityLabel":   purity.FormatLabel,
		"shortPurity":   purity.ShortLabel,
		"unitLabel":     purity.UnitLabel,
		"changeClass":   changeClass,
	}
}

func changeClass(d decimal.Decimal) string {
	switch d.Sign() {
	case 1:
		return "up"
	case -1:
		return "down"
	}
	return "flat"
}

func (s *Server) newPage(title, description, path string) page {
	return page{
		Title:       title,
		Description: description,
		Canonical:   s.opts.PublicURL + path,
		Lang:        string(s.opts.Locale),
		Year:        s.opts.Now().Year(),
	}
}

// renderPage executes into a buffer so a template failure never leaves a
// half-written 200 response
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, status int, state string, view interface{}) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", view); err != nil {
		s.logger.WithError(err).WithField("template", name).Error("Failed to render page")
		metrics.PageRenders.WithLabelValues(r.Pattern, "error").Inc()
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	metrics.PageRenders.WithLabelValues(r.Pattern, state).Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.renderPage(w, r, "error", status, "error", errorView{
		page:     s.newPage(http.StatusText(status), message, r.URL.Path),
		Status:   status,
		Message:  message,
		RetryURL: r.URL.RequestURI(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
