package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QueryMetrics records cache behaviour of the query layer.
type QueryMetrics struct {
	duration *prometheus.HistogramVec
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	retries  *prometheus.CounterVec
}

// NewQueryMetrics registers the query metrics on the provided registerer.
// A nil registerer yields a recorder that drops everything.
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	if reg == nil {
		return &QueryMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "query_fetch_duration_seconds",
		Help:    "Duration of store fetches behind the query cache.",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_cache_hits_total",
		Help: "Reads served from the query cache.",
	}, []string{"query"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_cache_misses_total",
		Help: "Reads that went to the store.",
	}, []string{"query"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_retries_total",
		Help: "Retried store calls.",
	}, []string{"query"})
	reg.MustRegister(duration, hits, misses, retries)
	return &QueryMetrics{
		duration: duration,
		hits:     hits,
		misses:   misses,
		retries:  retries,
	}
}

// ObserveFetch records how long a store fetch took.
func (q *QueryMetrics) ObserveFetch(key string, duration time.Duration) {
	if q == nil || q.duration == nil {
		return
	}
	q.duration.WithLabelValues(family(key)).Observe(duration.Seconds())
}

func (q *QueryMetrics) IncHit(key string) {
	if q == nil || q.hits == nil {
		return
	}
	q.hits.WithLabelValues(family(key)).Inc()
}

func (q *QueryMetrics) IncMiss(key string) {
	if q == nil || q.misses == nil {
		return
	}
	q.misses.WithLabelValues(family(key)).Inc()
}

func (q *QueryMetrics) IncRetry(key string) {
	if q == nil || q.retries == nil {
		return
	}
	q.retries.WithLabelValues(family(key)).Inc()
}

// family keeps label cardinality bounded: "reviews:<id>:pending" becomes
// "reviews", "businesses:search:<q>" becomes "businesses:search".
func family(key string) string {
	key = normalizeLabel(key)
	parts := strings.Split(key, ":")
	if len(parts) >= 2 && parts[1] == "search" {
		return parts[0] + ":search"
	}
	return parts[0]
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
