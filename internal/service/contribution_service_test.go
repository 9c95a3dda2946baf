package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/forgeheat/internal/cache"
	"github.com/jengzang/forgeheat/internal/models"
	"github.com/jengzang/forgeheat/internal/provider"
	"github.com/jengzang/forgeheat/internal/service"
)

// mapStore is an in-memory Store that ignores TTLs.
type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (*mapStore) Close() error { return nil }

func newContributions(t *testing.T, clients ...provider.Client) (*service.ContributionService, *mapStore) {
	t.Helper()
	logger := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC))

	store := &mapStore{data: make(map[string][]byte)}
	agg := service.NewAggregationService(provider.NewRegistry(clients...), service.AggregationOptions{Logger: logger})
	aside := cache.NewAside(store, time.Hour, logger, nil)
	return service.NewContributionService(agg, service.NewHeatmapService(clock, time.UTC), aside), store
}

func TestContribution_Heatmap(t *testing.T) {
	t.Parallel()

	gh := &fakeClient{name: "GitHub", days: []models.DailyCount{
		{Date: "2024-01-01", Count: 5},
		{Date: "2024-01-02", Count: 10},
	}}
	svc, store := newContributions(t, gh)
	query := models.ContributionQuery{UID: "alice", Forges: []models.ForgeRequest{{Name: "github", Username: "alice"}}}

	first := svc.GetHeatmap(context.Background(), query)
	assert.False(t, first.Cached)
	assert.Equal(t, []models.SourceResult{{Name: "github", Username: "alice", Status: models.SourceOK, Days: 2}}, first.Sources)
	assert.EqualValues(t, 15, first.Summary.Total)
	assert.Equal(t, 2, first.Summary.CurrentStreak)
	cell, ok := findCell(first.Heatmap, "2024-01-01")
	require.True(t, ok)
	assert.Equal(t, 2, cell.Level)
	assert.Contains(t, store.data, "cache:alice")

	second := svc.GetHeatmap(context.Background(), query)
	assert.True(t, second.Cached)
	assert.Empty(t, second.Sources)
	assert.Equal(t, first.Heatmap, second.Heatmap)
	assert.Equal(t, first.Summary, second.Summary)
	assert.EqualValues(t, 1, gh.calls.Load())
}

func TestContribution_HistoryAndInvalidate(t *testing.T) {
	t.Parallel()

	gh := &fakeClient{name: "GitHub", days: []models.DailyCount{
		{Date: "2024-01-02", Count: 1},
		{Date: "2023-12-31", Count: 4},
	}}
	svc, store := newContributions(t, gh)
	query := models.ContributionQuery{UID: "bob", Forges: []models.ForgeRequest{{Name: "GitHub"}}}

	res := svc.GetHistory(context.Background(), query)
	assert.Equal(t, []models.DailyCount{
		{Date: "2023-12-31", Count: 4},
		{Date: "2024-01-02", Count: 1},
	}, res.History)

	require.NoError(t, svc.Invalidate(context.Background(), "bob"))
	assert.NotContains(t, store.data, "cache:bob")

	again := svc.GetHistory(context.Background(), query)
	assert.False(t, again.Cached)
	assert.EqualValues(t, 2, gh.calls.Load())
}

func TestContribution_AllFailedStillRenders(t *testing.T) {
	t.Parallel()

	bad := &fakeClient{name: "GitHub", err: &provider.Error{Provider: "GitHub", Kind: provider.ErrNetwork}}
	svc, store := newContributions(t, bad)

	res := svc.GetHeatmap(context.Background(), models.ContributionQuery{
		UID:    "carol",
		Forges: []models.ForgeRequest{{Name: "GitHub"}},
	})
	assert.NotEmpty(t, res.Heatmap)
	assert.Zero(t, res.Summary.Total)
	assert.Equal(t, models.SourceError, res.Sources[0].Status)
	assert.Empty(t, store.data)
	assert.Equal(t, []string{"GitHub"}, svc.Providers())
}
