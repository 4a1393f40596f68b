package web

import (
	"encoding/xml"
	"net/http"

	"svacron-metals/internal/models"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	today := s.opts.Now().Format(models.DateLayout)

	set := urlSet{
		Xmlns: sitemapNamespace,
		URLs: []sitemapURL{
			{Loc: s.opts.PublicURL + "/", LastMod: today, ChangeFreq: "daily", Priority: 1.0},
		},
	}
	for _, metal := range models.AllMetals() {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.opts.PublicURL + metalPath(metal),
			LastMod:    today,
			ChangeFreq: "daily",
			Priority:   0.9,
		})
	}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        s.opts.PublicURL + "/gold-price-history",
		LastMod:    today,
		ChangeFreq: "monthly",
		Priority:   0.8,
	})

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode sitemap")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
