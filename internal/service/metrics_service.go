package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	cacheLatency prometheus.Observer
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter

	geocodeDuration *prometheus.HistogramVec

	evaluationsTotal prometheus.Counter
	searchKeepRatio  prometheus.Histogram
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	geocodeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geocode_request_duration_seconds",
		Help:    "Latency of geocoding provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	evaluationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "availability_evaluations_total",
		Help: "Total number of special availability evaluations",
	})

	searchKeepRatio := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_page_keep_ratio",
		Help:    "Fraction of a search page retained after in-memory filtering",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses, geocodeDuration, evaluationsTotal, searchKeepRatio)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		geocodeDuration:  geocodeDuration,
		evaluationsTotal: evaluationsTotal,
		searchKeepRatio:  searchKeepRatio,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records latency and count for one HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordCacheOperation records a cache lookup outcome.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	s.cacheLatency.Observe(duration.Seconds())
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
}

// ObserveGeocode records one provider round-trip.
func (s *MetricsService) ObserveGeocode(outcome string, duration time.Duration) {
	s.geocodeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveSearchPage records the availability evaluation volume and the
// keep-ratio of one search page. The ratio distribution is what makes the
// approximate count strategy auditable in production.
func (s *MetricsService) ObserveSearchPage(evaluated int, keepRatio float64) {
	s.evaluationsTotal.Add(float64(evaluated))
	s.searchKeepRatio.Observe(keepRatio)
}
