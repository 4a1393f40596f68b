package metaldata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"svacron-metals/internal/metrics"
	"svacron-metals/internal/models"
	"svacron-metals/internal/services/profiles"
)

// DefaultTTL is how long a fetched payload is served before refetching
const DefaultTTL = 5 * time.Minute

// Source is the upstream the service reads through
type Source interface {
	GetMetalData(ctx context.Context, metal models.MetalType) (*models.MetalData, error)
	GetAllMetalsData(ctx context.Context) (map[models.MetalType]*models.MetalData, error)
}

// Cache stores payloads for the revalidation window
type Cache interface {
	Get(ctx context.Context, metal models.MetalType) (*models.MetalData, error)
	Set(ctx context.Context, metal models.MetalType, data *models.MetalData, ttl time.Duration) error
	Tier() string
}

// Notifier is told about every refreshed payload
type Notifier interface {
	PublishMetal(ctx context.Context, metal models.MetalType, data *models.MetalData) error
}

// FailurePolicy decides what callers see when a fetch fails
type FailurePolicy string

const (
	FailPropagate   FailurePolicy = "propagate"
	FailPlaceholder FailurePolicy = "placeholder"
)

// ParseFailurePolicy validates an ON_FETCH_FAILURE value
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case FailPropagate, FailPlaceholder:
		return p, nil
	case "":
		return FailPropagate, nil
	}
	return "", fmt.Errorf("invalid fetch failure policy %q (want propagate or placeholder)", s)
}

// ServiceOptions tunes caching and failure handling
type ServiceOptions struct {
	TTL      time.Duration
	Policy   FailurePolicy
	Profiles profiles.Set
	Now      func() time.Time
}

type Service struct {
	source   Source
	cache    Cache
	notifier Notifier
	ttl      time.Duration
	policy   FailurePolicy
	profiles profiles.Set
	now      func() time.Time
	logger   *logrus.Logger
}

// NewService wires a source with an optional cache and notifier
func NewService(source Source, cache Cache, notifier Notifier, opts ServiceOptions, logger *logrus.Logger) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Policy == "" {
		opts.Policy = FailPropagate
	}
	if opts.Profiles == nil {
		opts.Profiles = profiles.Defaults()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		source:   source,
		cache:    cache,
		notifier: notifier,
		ttl:      opts.TTL,
		policy:   opts.Policy,
		profiles: opts.Profiles,
		now:      opts.Now,
		logger:   logger,
	}
}

// Policy returns the configured failure policy
func (s *Service) Policy() FailurePolicy {
	return s.policy
}

// GetMetal returns fresh cached data or fetches it
func (s *Service) GetMetal(ctx context.Context, metal models.MetalType) (*models.MetalData, error) {
	if _, ok := models.ParseMetalType(string(metal)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetal, metal)
	}

	if cached := s.cached(ctx, metal); cached != nil {
		return cached, nil
	}

	data, err := s.source.GetMetalData(ctx, metal)
	if err != nil {
		return s.onFailure(metal, err)
	}

	s.store(ctx, metal, data)
	return data, nil
}

// GetAllMetals returns every metal, served from cache when all are fresh
func (s *Service) GetAllMetals(ctx context.Context) (map[models.MetalType]*models.MetalData, error) {
	all := make(map[models.MetalType]*models.MetalData, len(models.AllMetals()))
	for _, metal := range models.AllMetals() {
		cached := s.cached(ctx, metal)
		if cached == nil {
			all = nil
			break
		}
		all[metal] = cached
	}
	if all != nil {
		return all, nil
	}

	fetched, err := s.source.GetAllMetalsData(ctx)
	if err != nil {
		if s.policy != FailPlaceholder {
			return nil, err
		}
		fetched = make(map[models.MetalType]*models.MetalData, len(models.AllMetals()))
		for _, metal := range models.AllMetals() {
			fetched[metal], _ = s.onFailure(metal, err)
		}
		return fetched, nil
	}

	for metal, data := range fetched {
		s.store(ctx, metal, data)
	}
	return fetched, nil
}

// GetMetals fetches the given metals concurrently. Under the propagate policy
// the failures are joined; successful metals are still returned.
func (s *Service) GetMetals(ctx context.Context, metals ...models.MetalType) (map[models.MetalType]*models.MetalData, error) {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	result := make(map[models.MetalType]*models.MetalData, len(metals))

	for _, metal := range metals {
		wg.Add(1)
		go func(m models.MetalType) {
			defer wg.Done()
			data, err := s.GetMetal(ctx, m)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			result[m] = data
		}(metal)
	}
	wg.Wait()

	return result, errors.Join(errs...)
}

// Refresh refetches a metal regardless of cache state, re-caches it and
// notifies subscribers
func (s *Service) Refresh(ctx context.Context, metal models.MetalType) error {
	data, err := s.source.GetMetalData(ctx, metal)
	if err != nil {
		metrics.Refreshes.WithLabelValues(string(metal), "error").Inc()
		return err
	}
	metrics.Refreshes.WithLabelValues(string(metal), "ok").Inc()

	s.store(ctx, metal, data)

	if s.notifier != nil {
		if err := s.notifier.PublishMetal(ctx, metal, data); err != nil {
			metrics.PublishFailures.Inc()
			s.logger.WithError(err).WithField("metal", metal).Warn("Failed to publish metal update")
		}
	}
	return nil
}

// StartRefresher refreshes every metal on each tick until ctx is cancelled
func (s *Service) StartRefresher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, metal := range models.AllMetals() {
				go func(m models.MetalType) {
					if err := s.Refresh(ctx, m); err != nil {
						s.logger.WithError(err).Debugf("Failed to refresh %s", m)
					}
				}(metal)
			}
		}
	}
}

func (s *Service) cached(ctx context.Context, metal models.MetalType) *models.MetalData {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, metal)
	hit := err == nil && data != nil
	metrics.RecordCacheAccess(s.cache.Tier(), hit)
	if !hit {
		return nil
	}
	return data
}

func (s *Service) store(ctx context.Context, metal models.MetalType, data *models.MetalData) {
	if s.cache == nil || data == nil || data.Placeholder {
		return
	}
	if err := s.cache.Set(ctx, metal, data, s.ttl); err != nil {
		s.logger.WithError(err).WithField("metal", metal).Warn("Failed to cache metal data")
	}
}

func (s *Service) onFailure(metal models.MetalType, err error) (*models.MetalData, error) {
	if s.policy != FailPlaceholder {
		return nil, err
	}

	metrics.PlaceholderSubstitutions.WithLabelValues(string(metal)).Inc()
	s.logger.WithError(err).WithField("metal", metal).Warn("Serving placeholder metal data")
	return Placeholder(s.profiles.Get(metal), s.now()), nil
}
