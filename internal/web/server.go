// Package web serves the rate pages, the JSON API and operational endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
	"svacron-metals/internal/services/goldhistory"
	"svacron-metals/internal/services/profiles"
)

// DataSource supplies metal payloads to the handlers
type DataSource interface {
	GetMetal(ctx context.Context, metal models.MetalType) (*models.MetalData, error)
	GetAllMetals(ctx context.Context) (map[models.MetalType]*models.MetalData, error)
}

type Options struct {
	Port      int
	PublicURL string
	Locale    format.Locale
	Version   string
	CacheTier string
	Now       func() time.Time
}

type Server struct {
	data       DataSource
	profiles   profiles.Set
	history    *goldhistory.Dataset
	opts       Options
	pages      map[string]*template.Template
	logger     *logrus.Logger
	httpServer *http.Server
	startTime  time.Time
}

func NewServer(
	data DataSource,
	profileSet profiles.Set,
	history *goldhistory.Dataset,
	opts Options,
	logger *logrus.Logger,
) (*Server, error) {
	if opts.Locale == "" {
		opts.Locale = format.LocaleIndia
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if profileSet == nil {
		profileSet = profiles.Defaults()
	}

	s := &Server{
		data:      data,
		profiles:  profileSet,
		history:   history,
		opts:      opts,
		logger:    logger,
		startTime: time.Now(),
	}

	pages, err := parsePages(s.templateFuncs())
	if err != nil {
		return nil, err
	}
	s.pages = pages

	return s, nil
}

// Handler returns the routed handler wrapped in request middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	for _, metal := range models.AllMetals() {
		mux.HandleFunc("GET "+metalPath(metal), s.handleMetalPage(metal))
	}
	mux.HandleFunc("GET /gold-price-history", s.handleGoldHistory)

	mux.HandleFunc("GET /api/v1/metals", s.handleAPIMetals)
	mux.HandleFunc("GET /api/v1/metals/{metal}", s.handleAPIMetal)
	mux.HandleFunc("GET /api/v1/metals/{metal}/chart", s.handleAPIChart)
	mux.HandleFunc("GET /api/v1/metals/{metal}/chart.png", s.handleAPIChartPNG)
	mux.HandleFunc("GET /api/v1/gold-history", s.handleAPIGoldHistory)

	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.withRequestLogging(mux)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("HTTP server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Stopping HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

func metalPath(metal models.MetalType) string {
	return "/" + string(metal) + "-rate-today"
}
