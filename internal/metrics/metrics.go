// Package metrics holds the prometheus collectors shared by the marketdesk
// services. Collectors register with the default registry and are served
// by promhttp at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheRequests counts cache lookups by cache name and result (hit|miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketdesk_cache_requests_total",
		Help: "Cache lookups partitioned by cache and result.",
	}, []string{"cache", "result"})

	// UpstreamFailures counts upstream failures that were absorbed rather than surfaced.
	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketdesk_upstream_failures_total",
		Help: "Absorbed upstream failures partitioned by source.",
	}, []string{"source"})

	// CalendarTier counts which calendar tier produced the served list.
	CalendarTier = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketdesk_calendar_tier_total",
		Help: "Economic calendar responses partitioned by the tier that served them.",
	}, []string{"tier"})

	// GenerationDuration observes text generation latency.
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketdesk_generation_duration_seconds",
		Help:    "Text generation latency partitioned by provider and outcome.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "outcome"})
)

// Upstream sources used with UpstreamFailures.
const (
	SourceNews          = "news"
	SourcePriceSnapshot = "price_snapshot"
	SourcePriceHistory  = "price_history"
	SourcePriceInfo     = "price_info"
	SourceCalendarMonth = "calendar_month"
	SourceChart         = "chart"
)

// CacheLookup records one cache lookup.
func CacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequests.WithLabelValues(cache, result).Inc()
}

// UpstreamFailure records one absorbed failure for source.
func UpstreamFailure(source string) {
	UpstreamFailures.WithLabelValues(source).Inc()
}

// CalendarServed records the tier that produced a calendar response.
func CalendarServed(tier string) {
	CalendarTier.WithLabelValues(tier).Inc()
}

// ObserveGeneration records a text generation call that started at start.
func ObserveGeneration(provider string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	GenerationDuration.WithLabelValues(provider, outcome).Observe(time.Since(start).Seconds())
}
