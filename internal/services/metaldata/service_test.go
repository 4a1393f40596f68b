package metaldata

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svacron-metals/internal/cache"
	"svacron-metals/internal/models"
	"svacron-metals/internal/services/profiles"
)

type fakeSource struct {
	mu        sync.Mutex
	data      map[models.MetalType]*models.MetalData
	err       error
	calls     int
	bulkCalls int
}

func (f *fakeSource) GetMetalData(_ context.Context, metal models.MetalType) (*models.MetalData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data[metal], nil
}

func (f *fakeSource) GetAllMetalsData(_ context.Context) (map[models.MetalType]*models.MetalData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	published []models.MetalType
	err       error
}

func (f *fakeNotifier) PublishMetal(_ context.Context, metal models.MetalType, _ *models.MetalData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, metal)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func sampleData() map[models.MetalType]*models.MetalData {
	out := make(map[models.MetalType]*models.MetalData)
	for _, m := range models.AllMetals() {
		out[m] = &models.MetalData{
			Metal:       m.Title(),
			LastUpdated: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			Rates:       []models.MetalRate{{Purity: "999", Price: decimal.NewFromInt(100)}},
		}
	}
	return out
}

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestService(source Source, c Cache, n Notifier, policy FailurePolicy) *Service {
	return NewService(source, c, n, ServiceOptions{
		Policy: policy,
		Now:    func() time.Time { return fixedNow },
	}, testLogger())
}

func upstreamDown() error {
	return &FetchError{Metal: "gold", StatusCode: 500, Err: errors.New("boom")}
}

func TestService_GetMetalCachesWithinWindow(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	svc := newTestService(src, cache.NewMemoryMetalCache(), nil, FailPropagate)
	ctx := context.Background()

	first, err := svc.GetMetal(ctx, models.Gold)
	require.NoError(t, err)
	second, err := svc.GetMetal(ctx, models.Gold)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.calls)
}

func TestService_GetMetalWithoutCache(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	svc := newTestService(src, nil, nil, FailPropagate)

	_, err := svc.GetMetal(context.Background(), models.Silver)
	require.NoError(t, err)
	_, err = svc.GetMetal(context.Background(), models.Silver)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestService_UnknownMetal(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil, nil, FailPlaceholder)

	_, err := svc.GetMetal(context.Background(), models.MetalType("copper"))
	assert.ErrorIs(t, err, ErrUnknownMetal)
}

func TestService_PropagatePolicy(t *testing.T) {
	src := &fakeSource{err: upstreamDown()}
	svc := newTestService(src, cache.NewMemoryMetalCache(), nil, FailPropagate)
	ctx := context.Background()

	_, err := svc.GetMetal(ctx, models.Gold)
	assert.ErrorIs(t, err, ErrFetchFailure)

	_, err = svc.GetAllMetals(ctx)
	assert.ErrorIs(t, err, ErrFetchFailure, "bulk fetch follows the same policy")
}

func TestService_PlaceholderPolicy(t *testing.T) {
	src := &fakeSource{err: upstreamDown()}
	c := cache.NewMemoryMetalCache()
	svc := newTestService(src, c, nil, FailPlaceholder)
	ctx := context.Background()

	data, err := svc.GetMetal(ctx, models.Gold)
	require.NoError(t, err)
	assert.True(t, data.Placeholder)
	assert.Equal(t, "Gold", data.Metal)

	_, err = c.Get(ctx, models.Gold)
	assert.ErrorIs(t, err, cache.ErrMiss, "placeholder data is never cached")

	all, err := svc.GetAllMetals(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for metal, d := range all {
		assert.True(t, d.Placeholder, metal)
	}
}

func TestService_GetAllMetalsUsesCacheWhenComplete(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	svc := newTestService(src, cache.NewMemoryMetalCache(), nil, FailPropagate)
	ctx := context.Background()

	_, err := svc.GetAllMetals(ctx)
	require.NoError(t, err)
	all, err := svc.GetAllMetals(ctx)
	require.NoError(t, err)

	assert.Len(t, all, 3)
	assert.Equal(t, 1, src.bulkCalls)
	assert.Equal(t, 0, src.calls)
}

func TestService_GetMetals(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	svc := newTestService(src, nil, nil, FailPropagate)

	got, err := svc.GetMetals(context.Background(), models.Gold, models.Platinum)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, models.Gold)
	assert.Contains(t, got, models.Platinum)

	src.err = upstreamDown()
	got, err = svc.GetMetals(context.Background(), models.Gold, models.Silver)
	assert.ErrorIs(t, err, ErrFetchFailure)
	assert.Empty(t, got)
}

func TestService_RefreshPublishes(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	c := cache.NewMemoryMetalCache()
	n := &fakeNotifier{}
	svc := newTestService(src, c, n, FailPropagate)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx, models.Silver))
	assert.Equal(t, []models.MetalType{models.Silver}, n.published)

	cached, err := c.Get(ctx, models.Silver)
	require.NoError(t, err)
	assert.Equal(t, "Silver", cached.Metal)

	n.err = errors.New("redis down")
	assert.NoError(t, svc.Refresh(ctx, models.Gold), "publish failures do not fail a refresh")

	src.err = upstreamDown()
	assert.Error(t, svc.Refresh(ctx, models.Gold))
}

func TestService_StartRefresher(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	n := &fakeNotifier{}
	svc := newTestService(src, cache.NewMemoryMetalCache(), n, FailPropagate)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartRefresher(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return n.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after cancel")
	}
}

func TestParseFailurePolicy(t *testing.T) {
	p, err := ParseFailurePolicy("Placeholder")
	require.NoError(t, err)
	assert.Equal(t, FailPlaceholder, p)

	p, err = ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, FailPropagate, p)

	_, err = ParseFailurePolicy("retry")
	assert.Error(t, err)
}

func TestPlaceholder(t *testing.T) {
	profile := profiles.Defaults().Get(models.Gold)
	asOf := time.Date(2024, time.March, 10, 18, 45, 0, 0, time.UTC)

	a := Placeholder(profile, asOf)
	b := Placeholder(profile, asOf)
	assert.Equal(t, mustJSON(t, a), mustJSON(t, b), "placeholder output is deterministic")

	assert.True(t, a.Placeholder)
	require.Len(t, a.History.OneMonth, placeholderDays)
	assert.Equal(t, "2024-03-10", a.History.OneMonth[0].Date)
	assert.Equal(t, "2024-02-10", a.History.OneMonth[placeholderDays-1].Date)
	assert.True(t, a.History.OneMonth[placeholderDays-1].Change.IsZero())

	require.Len(t, a.Rates, len(profile.Purities))
	assert.Equal(t, a.History.OneMonth[0].Price.Round(2).String(), a.Rates[0].Price.String())
	assert.True(t, a.Rates[1].Price.LessThan(a.Rates[0].Price))

	for i := 0; i < placeholderDays-1; i++ {
		cur, prev := a.History.OneMonth[i], a.History.OneMonth[i+1]
		assert.True(t, cur.Price.Sub(prev.Price).Equal(cur.Change), "day %s", cur.Date)
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
