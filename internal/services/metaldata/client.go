// Package metaldata fetches metal payloads from the pricing API, validates
// them, and serves them through a short-lived cache with a configurable
// policy for failed fetches.
package metaldata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"svacron-metals/internal/metrics"
	"svacron-metals/internal/models"
)

const (
	DefaultBaseURL   = "https://us-central1-metals-svacron-com.cloudfunctions.net/api"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second

	maxBodyBytes = 4 << 20
	bulkLabel    = "all"
)

// ClientConfig is built once at startup and owned by the caller
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64
	Burst      int
	HTTPClient *http.Client
}

// Client talks to the pricing API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewClient creates a client; zero config fields take the defaults
func NewClient(cfg ClientConfig, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RateLimit)
		if cfg.Burst < 1 {
			cfg.Burst = 1
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:     logger,
	}
}

// GetMetalData fetches GET {base}/metals/{metal}
func (c *Client) GetMetalData(ctx context.Context, metal models.MetalType) (*models.MetalData, error) {
	if _, ok := models.ParseMetalType(string(metal)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetal, metal)
	}

	start := time.Now()
	body, err := c.get(ctx, "/metals/"+string(metal), string(metal))
	if err == nil {
		var data *models.MetalData
		data, err = DecodeMetal(body, metal)
		if err == nil {
			metrics.TrackFetch(string(metal), start, nil)
			return data, nil
		}
		err = &FetchError{Metal: string(metal), Err: err}
	}

	metrics.TrackFetch(string(metal), start, err)
	c.logger.WithError(err).WithField("metal", metal).Warn("Failed to fetch metal data")
	return nil, err
}

// GetAllMetalsData fetches GET {base}/metals
func (c *Client) GetAllMetalsData(ctx context.Context) (map[models.MetalType]*models.MetalData, error) {
	start := time.Now()
	body, err := c.get(ctx, "/metals", bulkLabel)
	if err == nil {
		var all map[models.MetalType]*models.MetalData
		all, err = DecodeAll(body)
		if err == nil {
			metrics.TrackFetch(bulkLabel, start, nil)
			return all, nil
		}
		err = &FetchError{Metal: bulkLabel, Err: err}
	}

	metrics.TrackFetch(bulkLabel, start, err)
	c.logger.WithError(err).Warn("Failed to fetch all metals data")
	return nil, err
}

// get performs a rate-limited GET and returns the body of a 200 response
func (c *Client) get(ctx context.Context, path, metal string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Metal: metal, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &FetchError{Metal: metal, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("url", c.baseURL+path).Debug("Metals API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Metal: metal, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &FetchError{
			Metal:      metal,
			StatusCode: resp.StatusCode,
			Err:        errors.New(msg),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Metal: metal, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return body, nil
}
