// Package metrics exposes Prometheus collectors for the search path and a
// Recorder adapter implementing the domain.SearchMetrics contract.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go-talent-search-backend/internal/domain"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentsearch",
			Name:      "search_requests_total",
			Help:      "Total number of candidate search requests",
		},
		[]string{"mode", "status"},
	)

	SearchDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "talentsearch",
			Name:      "search_duration_seconds",
			Help:      "Candidate search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	SearchResultCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "talentsearch",
			Name:      "search_result_count",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentsearch",
			Name:      "search_cache_total",
			Help:      "Search cache events",
		},
		[]string{"event"}, // "hit" / "stale" / "miss" / "write_error"
	)

	EmbeddingFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "talentsearch",
			Name:      "embedding_fallbacks_total",
			Help:      "Semantic searches degraded to the text fallback path",
		},
	)
)

var registered bool

// Register registers the search metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDurationSeconds)
	prometheus.MustRegister(SearchResultCount)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(EmbeddingFallbacksTotal)
	registered = true
}

// Recorder implements domain.SearchMetrics on the collectors above.
type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (Recorder) ObserveSearch(mode domain.SearchMode, status string, duration time.Duration, resultCount int) {
	SearchRequestsTotal.WithLabelValues(string(mode), status).Inc()
	SearchDurationSeconds.WithLabelValues(string(mode)).Observe(duration.Seconds())
	SearchResultCount.Observe(float64(resultCount))
}

func (Recorder) CacheEvent(event string) {
	SearchCacheTotal.WithLabelValues(event).Inc()
}

func (Recorder) EmbeddingFallback() {
	EmbeddingFallbacksTotal.Inc()
}
