// Package observability provides the Prometheus metrics collector and the
// OpenTelemetry tracing bootstrap for the engine.
package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global collector instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the engine.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Routing metrics
	InteractionsProcessed prometheus.Counter
	RoutingDuration       prometheus.Histogram
	StageDuration         *prometheus.HistogramVec

	// Pathway metrics
	PathwaysCreated      prometheus.Counter
	PathwaysStrengthened prometheus.Counter
	PathwaysPruned       prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Event channel metrics
	EventsDropped prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace.
func NewCollector(namespace string) *Collector {
	// Singleton avoids duplicate registration in tests.
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	interactionsProcessed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_processed_total",
			Help:      "Total number of interactions routed through the engine",
		},
	)

	routingDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "routing_duration_seconds",
			Help:      "End-to-end interaction routing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Per-stage processing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	pathwaysCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pathways_created_total",
			Help:      "Total number of pathway connections created",
		},
	)

	pathwaysStrengthened := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pathways_strengthened_total",
			Help:      "Total number of pathway reinforcements",
		},
	)

	pathwaysPruned := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pathways_pruned_total",
			Help:      "Total number of pathways removed by decay",
		},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of lookup cache hits",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of lookup cache misses",
		},
	)

	eventsDropped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped for slow subscribers",
		},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		interactionsProcessed,
		routingDuration,
		stageDuration,
		pathwaysCreated,
		pathwaysStrengthened,
		pathwaysPruned,
		cacheHits,
		cacheMisses,
		eventsDropped,
	)

	globalCollector = &Collector{
		registry:              registry,
		HTTPRequests:          httpRequests,
		HTTPDuration:          httpDuration,
		InteractionsProcessed: interactionsProcessed,
		RoutingDuration:       routingDuration,
		StageDuration:         stageDuration,
		PathwaysCreated:       pathwaysCreated,
		PathwaysStrengthened:  pathwaysStrengthened,
		PathwaysPruned:        pathwaysPruned,
		CacheHits:             cacheHits,
		CacheMisses:           cacheMisses,
		EventsDropped:         eventsDropped,
	}

	return globalCollector
}

// Handler returns the HTTP handler serving this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
