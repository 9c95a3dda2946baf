package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cdr.dev/slog/v3"
	"golang.org/x/xerrors"

	"github.com/jengzang/forgeheat/internal/metrics"
	"github.com/jengzang/forgeheat/internal/models"
)

// ComputeFunc produces a fresh aggregation when the cache cannot serve one
type ComputeFunc func(ctx context.Context) models.AggregateResult

// Lookup is the outcome of a cache-aside read
type Lookup struct {
	Totals  models.Totals
	Sources []models.SourceResult // Only set when freshly computed
	Cached  bool
}

// Aside serves merged histories from a Store, falling back to a compute
// function. Store failures never reach the caller
type Aside struct {
	store   Store
	ttl     time.Duration
	logger  slog.Logger
	metrics *metrics.Metrics
}

// NewAside creates the cache-aside wrapper. A zero ttl means DefaultTTL
func NewAside(store Store, ttl time.Duration, logger slog.Logger, m *metrics.Metrics) *Aside {
	if store == nil {
		store = NoopStore{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Aside{store: store, ttl: ttl, logger: logger, metrics: m}
}

// GetAggregatedStats returns the cached totals for uid, or computes them and
// writes them back. An empty uid bypasses the cache entirely. A result in
// which every dispatched provider failed is returned but not stored
func (a *Aside) GetAggregatedStats(ctx context.Context, uid string, compute ComputeFunc) Lookup {
	if uid == "" {
		a.metrics.CacheLookup(metrics.CacheBypass)
		res := compute(ctx)
		return Lookup{Totals: res.Totals, Sources: res.Sources}
	}

	key := Key(uid)
	if totals, ok := a.read(ctx, key); ok {
		return Lookup{Totals: totals, Cached: true}
	}

	res := compute(ctx)
	if res.Totals == nil {
		res.Totals = make(models.Totals)
	}

	if res.AllFailed() {
		a.logger.Warn(ctx, "every provider failed, result not cached", slog.F("key", key))
		return Lookup{Totals: res.Totals, Sources: res.Sources}
	}

	a.write(ctx, key, res.Totals)
	return Lookup{Totals: res.Totals, Sources: res.Sources}
}

// Invalidate drops the cached entry for uid
func (a *Aside) Invalidate(ctx context.Context, uid string) error {
	if err := a.store.Delete(ctx, Key(uid)); err != nil {
		return xerrors.Errorf("delete %s: %w", Key(uid), err)
	}
	return nil
}

func (a *Aside) read(ctx context.Context, key string) (models.Totals, bool) {
	raw, err := a.store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrCacheMiss):
		a.metrics.CacheLookup(metrics.CacheMiss)
		return nil, false
	case err != nil:
		a.metrics.CacheLookup(metrics.CacheError)
		a.logger.Warn(ctx, "cache read failed, computing directly", slog.F("key", key), slog.Error(err))
		return nil, false
	}

	totals, err := decodeTotals(raw)
	if err != nil {
		a.metrics.CacheLookup(metrics.CacheMalformed)
		a.logger.Warn(ctx, "malformed cache entry, recomputing", slog.F("key", key), slog.Error(err))
		return nil, false
	}
	a.metrics.CacheLookup(metrics.CacheHit)
	return totals, true
}

func (a *Aside) write(ctx context.Context, key string, totals models.Totals) {
	raw, err := json.Marshal(totals)
	if err != nil {
		a.metrics.CacheWrite(false)
		a.logger.Error(ctx, "encode cache entry", slog.F("key", key), slog.Error(err))
		return
	}
	if err := a.store.Set(ctx, key, raw, a.ttl); err != nil {
		a.metrics.CacheWrite(false)
		a.logger.Warn(ctx, "cache write failed", slog.F("key", key), slog.Error(err))
		return
	}
	a.metrics.CacheWrite(true)
}

func decodeTotals(raw []byte) (models.Totals, error) {
	var totals models.Totals
	if err := json.Unmarshal(raw, &totals); err != nil {
		return nil, xerrors.Errorf("decode totals: %w", err)
	}
	if totals == nil {
		return nil, xerrors.New("decode totals: null entry")
	}
	for date, count := range totals {
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			return nil, xerrors.Errorf("decode totals: invalid date %q", date)
		}
		if count < 0 {
			return nil, xerrors.Errorf("decode totals: negative count for %s", date)
		}
	}
	return totals, nil
}
