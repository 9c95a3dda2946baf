package service

import (
	"context"

	"github.com/jengzang/forgeheat/internal/cache"
	"github.com/jengzang/forgeheat/internal/models"
	"github.com/jengzang/forgeheat/internal/stats"
)

// ContributionService serves heatmaps and histories through the cache
type ContributionService struct {
	aggregator *AggregationService
	heatmap    *HeatmapService
	aside      *cache.Aside
}

// NewContributionService creates a new contribution service
func NewContributionService(aggregator *AggregationService, heatmap *HeatmapService, aside *cache.Aside) *ContributionService {
	return &ContributionService{
		aggregator: aggregator,
		heatmap:    heatmap,
		aside:      aside,
	}
}

func (s *ContributionService) lookup(ctx context.Context, query models.ContributionQuery) cache.Lookup {
	return s.aside.GetAggregatedStats(ctx, query.UID, func(ctx context.Context) models.AggregateResult {
		return s.aggregator.Fetch(ctx, query.Forges)
	})
}

// GetHeatmap returns the calendar heatmap and summary for a query
func (s *ContributionService) GetHeatmap(ctx context.Context, query models.ContributionQuery) *models.HeatmapResponse {
	res := s.lookup(ctx, query)
	return &models.HeatmapResponse{
		Heatmap: s.heatmap.Build(res.Totals),
		Summary: stats.Summarize(res.Totals, s.heatmap.Today()),
		Sources: res.Sources,
		Cached:  res.Cached,
	}
}

// GetHistory returns the merged history sorted by date
func (s *ContributionService) GetHistory(ctx context.Context, query models.ContributionQuery) *models.StatsResponse {
	res := s.lookup(ctx, query)
	return &models.StatsResponse{
		History: res.Totals.History(),
		Sources: res.Sources,
		Cached:  res.Cached,
	}
}

// Invalidate drops the cached history of uid
func (s *ContributionService) Invalidate(ctx context.Context, uid string) error {
	return s.aside.Invalidate(ctx, uid)
}

// Providers lists the registered provider names
func (s *ContributionService) Providers() []string {
	return s.aggregator.Providers()
}
