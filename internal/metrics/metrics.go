// Package metrics holds the Prometheus collectors for provider calls and
// cache lookups.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results
const (
	CacheHit       = "hit"
	CacheMiss      = "miss"
	CacheMalformed = "malformed"
	CacheError     = "error"
	CacheBypass    = "bypass"
)

// Metrics is safe to use as a nil pointer, in which case nothing is recorded
type Metrics struct {
	providerDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	cacheWrites      *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "forgeheat",
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Duration of contribution fetches per provider and outcome.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forgeheat",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forgeheat",
			Subsystem: "cache",
			Name:      "writes_total",
			Help:      "Cache write-backs by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.providerDuration, m.cacheLookups, m.cacheWrites)
	return m
}

func (m *Metrics) ObserveProvider(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.providerDuration.WithLabelValues(provider, outcome).Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheWrite(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.cacheWrites.WithLabelValues(result).Inc()
}
