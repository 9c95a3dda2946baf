package service

import (
	"context"
	"time"

	"cdr.dev/slog/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/forgeheat/internal/metrics"
	"github.com/jengzang/forgeheat/internal/models"
	"github.com/jengzang/forgeheat/internal/provider"
)

const (
	DefaultProviderTimeout = 30 * time.Second
	DefaultMaxConcurrent   = 8
)

// AggregationService fans a batch of forge requests out to their providers
// and merges the results into per-day totals
type AggregationService struct {
	registry      *provider.Registry
	logger        slog.Logger
	metrics       *metrics.Metrics
	timeout       time.Duration
	maxConcurrent int
}

// AggregationOptions configures an AggregationService
type AggregationOptions struct {
	Logger        slog.Logger
	Metrics       *metrics.Metrics
	Timeout       time.Duration // Per provider call
	MaxConcurrent int
}

// NewAggregationService creates a new aggregation service
func NewAggregationService(registry *provider.Registry, opts AggregationOptions) *AggregationService {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProviderTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	return &AggregationService{
		registry:      registry,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		timeout:       opts.Timeout,
		maxConcurrent: opts.MaxConcurrent,
	}
}

// task is one matched request and the slot its goroutine writes to
type task struct {
	index  int
	client provider.Client
	req    models.ForgeRequest
	days   []models.DailyCount
	err    error
}

// Fetch queries every matched provider concurrently and merges the results.
// Unknown providers are skipped and failing providers are excluded, so the
// returned totals may be empty but are never nil
func (s *AggregationService) Fetch(ctx context.Context, forges []models.ForgeRequest) models.AggregateResult {
	sources := make([]models.SourceResult, len(forges))
	tasks := make([]*task, 0, len(forges))

	for i, req := range forges {
		sources[i] = models.SourceResult{Name: req.Name, Username: req.Username}
		client, ok := s.registry.Lookup(req.Name)
		if !ok {
			s.logger.Warn(ctx, "unknown provider, skipping",
				slog.F("provider", req.Name),
				slog.F("username", req.Username),
			)
			sources[i].Status = models.SourceUnknownProvider
			sources[i].Error = provider.KindName(provider.ErrUnknownProvider)
			continue
		}
		tasks = append(tasks, &task{index: i, client: client, req: req})
	}

	// Tasks never return an error, so one failure cannot cancel the others
	var eg errgroup.Group
	eg.SetLimit(s.maxConcurrent)
	for _, t := range tasks {
		eg.Go(func() error {
			t.days, t.err = s.call(ctx, t.client, t.req)
			return nil
		})
	}
	_ = eg.Wait()

	totals := make(models.Totals)
	for _, t := range tasks {
		src := &sources[t.index]
		if t.err != nil {
			s.logger.Error(ctx, "provider failed",
				slog.F("provider", t.client.Name()),
				slog.F("username", t.req.Username),
				slog.F("kind", provider.KindName(t.err)),
				slog.Error(t.err),
			)
			src.Status = models.SourceError
			src.Error = provider.KindName(t.err)
			continue
		}
		totals.Add(t.days)
		src.Status = models.SourceOK
		src.Days = len(t.days)
	}

	return models.AggregateResult{Totals: totals, Sources: sources}
}

func (s *AggregationService) call(ctx context.Context, client provider.Client, req models.ForgeRequest) ([]models.DailyCount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	days, err := client.GetStats(ctx, provider.Credentials{
		Username: req.Username,
		Token:    req.Token,
		BaseURL:  req.URL,
	})
	outcome := "ok"
	if err != nil {
		outcome = provider.KindName(err)
	}
	s.metrics.ObserveProvider(client.Name(), outcome, time.Since(start))
	return days, err
}

// Providers lists the registered provider names
func (s *AggregationService) Providers() []string {
	return s.registry.Names()
}
