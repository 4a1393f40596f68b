// Package prefetch fills the metal cache ahead of traffic.
package prefetch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"svacron-metals/internal/models"
	"svacron-metals/internal/services/metaldata"
)

type Warmer struct {
	source metaldata.Source
	cache  metaldata.Cache
	ttl    time.Duration
	out    io.Writer
	logger *logrus.Logger
}

type Job struct {
	Metals  []models.MetalType
	Workers int

	// Strict turns any failed metal into an error from Warm
	Strict bool
}

func (j *Job) String() string {
	names := make([]string, len(j.Metals))
	for i, m := range j.Metals {
		names[i] = string(m)
	}
	return fmt.Sprintf("%s with %d workers", strings.Join(names, ","), j.Workers)
}

type warmResult struct {
	Metal models.MetalType
	Rates int
	Days  int
	Error error
}

// Summary counts the outcome of a warm run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// New creates a warmer; progress is drawn on out
func New(source metaldata.Source, cache metaldata.Cache, ttl time.Duration, out io.Writer, logger *logrus.Logger) *Warmer {
	return &Warmer{
		source: source,
		cache:  cache,
		ttl:    ttl,
		out:    out,
		logger: logger,
	}
}

// ParseMetals splits a comma-separated list; "all" or "" selects every metal
func ParseMetals(s string) ([]models.MetalType, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return models.AllMetals(), nil
	}

	var metals []models.MetalType
	seen := make(map[models.MetalType]bool)
	for _, part := range strings.Split(s, ",") {
		metal, ok := models.ParseMetalType(part)
		if !ok {
			return nil, fmt.Errorf("%w: %q", metaldata.ErrUnknownMetal, strings.TrimSpace(part))
		}
		if !seen[metal] {
			seen[metal] = true
			metals = append(metals, metal)
		}
	}
	return metals, nil
}

// Warm fetches every metal in the job and stores it in the cache
func (w *Warmer) Warm(ctx context.Context, job *Job) (Summary, error) {
	workers := job.Workers
	if workers < 1 {
		workers = 1
	}

	taskChan := make(chan models.MetalType, len(job.Metals))
	resultChan := make(chan warmResult, len(job.Metals))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for metal := range taskChan {
				resultChan <- w.warmMetal(ctx, metal)
			}
		}()
	}

	for _, metal := range job.Metals {
		taskChan <- metal
	}
	close(taskChan)

	bar := progressbar.NewOptions(len(job.Metals),
		progressbar.OptionSetWriter(w.out),
		progressbar.OptionSetDescription("Warming metal cache"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	summary := Summary{Total: len(job.Metals)}
	for result := range resultChan {
		_ = bar.Add(1)
		if result.Error != nil {
			summary.Failed++
			w.logger.WithError(result.Error).WithField("metal", result.Metal).Warn("Failed to warm metal")
			continue
		}
		summary.Succeeded++
		w.logger.WithFields(logrus.Fields{
			"metal": result.Metal,
			"rates": result.Rates,
			"days":  result.Days,
		}).Debug("Warmed metal")
	}
	_ = bar.Finish()

	w.logger.Infof("Cache warm complete: %d succeeded, %d failed", summary.Succeeded, summary.Failed)

	if job.Strict && summary.Failed > 0 {
		return summary, fmt.Errorf("cache warm completed with %d failures", summary.Failed)
	}
	return summary, nil
}

func (w *Warmer) warmMetal(ctx context.Context, metal models.MetalType) warmResult {
	data, err := w.source.GetMetalData(ctx, metal)
	if err != nil {
		return warmResult{Metal: metal, Error: err}
	}

	if err := w.cache.Set(ctx, metal, data, w.ttl); err != nil {
		return warmResult{Metal: metal, Error: fmt.Errorf("failed to cache: %w", err)}
	}

	return warmResult{
		Metal: metal,
		Rates: len(data.Rates),
		Days:  len(data.History.OneMonth),
	}
}
