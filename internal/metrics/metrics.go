package metrics

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	// Upstream API metrics
	UpstreamFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svacron_upstream_fetches_total",
			Help: "Total metal data fetches from the pricing API by outcome",
		},
		[]string{"metal", "outcome"}, // ok, http_error, malformed, network
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "svacron_upstream_latency_ms",
			Help:    "Pricing API request latency in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"metal"},
	)

	PlaceholderSubstitutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svacron_placeholder_substitutions_total",
			Help: "Total times placeholder data replaced a failed fetch",
		},
		[]string{"metal"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svacron_cache_hits_total",
			Help: "Total cache hits by tier",
		},
		[]string{"tier"}, // memory, redis
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svacron_cache_misses_total",
			Help: "Total cache misses by tier",
		},
		[]string{"tier"},
	)

	CacheHitRatio = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "svacron_cache_hit_ratio",
			Help: "Cache hit ratio by tier (0-1)",
		},
		[]string{"tier"},
	)

	// Refresh metrics
	Refreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svacron_refreshes_total",
			Help: "Total background refreshes by metal and outcome",
		},
		[]string{"metal", "outcome"},
	)

	PublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "svacron_publish_failures_total",
			Help: "Total failed refresh notifications",
		},
	)

	// Web metrics
	PageRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svacron_page_renders_total",
			Help: "Total rendered pages by route and state",
		},
		[]string{"route", "state"}, // ok, no_data, error
	)

	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "svacron_http_request_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"route"},
	)
)

// Outcome classifies a fetch error for the outcome label
type Outcome interface {
	FetchOutcome() string
}

// RateTracker tracks rate per second for dynamic metrics
type RateTracker struct {
	count       int64
	lastCount   int64
	lastUpdated time.Time
	mu          sync.Mutex
}

func NewRateTracker() *RateTracker {
	return &RateTracker{
		lastUpdated: time.Now(),
	}
}

func (rt *RateTracker) Increment() {
	atomic.AddInt64(&rt.count, 1)
}

func (rt *RateTracker) Total() int64 {
	return atomic.LoadInt64(&rt.count)
}

func (rt *RateTracker) GetRate() float64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rt.lastUpdated).Seconds()

	if elapsed < 1.0 {
		return 0
	}

	current := atomic.LoadInt64(&rt.count)
	rate := float64(current-rt.lastCount) / elapsed

	rt.lastCount = current
	rt.lastUpdated = now

	return rate
}

var fetchTracker = NewRateTracker()

// TrackFetch records one upstream fetch and its latency
func TrackFetch(metal string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var o Outcome
		if errors.As(err, &o) {
			outcome = o.FetchOutcome()
		}
	}
	UpstreamFetches.WithLabelValues(metal, outcome).Inc()
	TrackLatency(start, UpstreamLatency.WithLabelValues(metal))
	fetchTracker.Increment()
}

// GetFetchesPerSecond returns the upstream fetch rate since the last call
func GetFetchesPerSecond() float64 {
	return fetchTracker.GetRate()
}

// TotalFetches returns the number of upstream fetches since start
func TotalFetches() int64 {
	return fetchTracker.Total()
}

// RecordCacheAccess records a cache hit or miss
func RecordCacheAccess(tier string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(tier).Inc()
	} else {
		CacheMisses.WithLabelValues(tier).Inc()
	}
	updateCacheHitRatio(tier)
}

// updateCacheHitRatio reads the counters back to keep the ratio gauge current
func updateCacheHitRatio(tier string) {
	hits, _ := CacheHits.GetMetricWithLabelValues(tier)
	misses, _ := CacheMisses.GetMetricWithLabelValues(tier)

	if hits != nil && misses != nil {
		hitsMetric := &dto.Metric{}
		missesMetric := &dto.Metric{}

		if hits.Write(hitsMetric) == nil && misses.Write(missesMetric) == nil {
			hitsVal := hitsMetric.Counter.GetValue()
			missesVal := missesMetric.Counter.GetValue()

			total := hitsVal + missesVal
			if total > 0 {
				CacheHitRatio.WithLabelValues(tier).Set(hitsVal / total)
			}
		}
	}
}

// CacheHitRatioFor reads the current hit ratio gauge for a tier
func CacheHitRatioFor(tier string) float64 {
	g, err := CacheHitRatio.GetMetricWithLabelValues(tier)
	if err != nil {
		return 0
	}
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

// TrackLatency is a helper to measure and record latency
func TrackLatency(start time.Time, histogram prometheus.Observer) {
	histogram.Observe(float64(time.Since(start).Milliseconds()))
}
