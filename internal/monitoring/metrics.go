package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	FetchesTotal        *prometheus.CounterVec
	CacheLookupsTotal   *prometheus.CounterVec
	CardsRenderedTotal  prometheus.Counter
	ErrorsTotal         *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers every collector with reg. Pass
// prometheus.DefaultRegisterer in binaries and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linkcard_fetches_total",
			Help: "Page fetches by outcome.",
		}, []string{"result"}), // 'network', 'memory', 'failed'
		CacheLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linkcard_cache_lookups_total",
			Help: "Metadata cache lookups by outcome.",
		}, []string{"result"}), // 'hit', 'miss'
		CardsRenderedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "linkcard_cards_rendered_total",
			Help: "Link cards rendered into documents or responses.",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linkcard_errors_total",
			Help: "The total number of errors encountered.",
		}, []string{"type"}), // e.g., 'fetch_failed', 'cache_read', 'cache_write'
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// NewNopMetrics returns metrics registered nowhere.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func (m *Metrics) IncFetch(result string) {
	m.FetchesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCacheLookup(result string) {
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCardsRendered() {
	m.CardsRenderedTotal.Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
