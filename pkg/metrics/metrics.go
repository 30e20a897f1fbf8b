package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	URLsInQueue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "urls_in_queue",
			Help: "Current number of jobs in the analysis queue.",
		},
	)

	// CrawlsTotal counts processed jobs by outcome: success, blocked,
	// not_found, retryable, error.
	CrawlsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawls_total",
			Help: "Total number of crawl attempts by outcome.",
		},
		[]string{"outcome"},
	)

	CrawlDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawl_duration_seconds",
			Help:    "Duration of crawl operations.",
			Buckets: []float64{0.25, 1, 5, 10, 15, 30, 60},
		},
		[]string{"domain"},
	)

	EnqueueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enqueue_total",
			Help: "Enqueue attempts by result (enqueued, skipped, error).",
		},
		[]string{"result"},
	)

	AnalyzeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyze_requests_total",
			Help: "Analyze requests by returned status.",
		},
		[]string{"status"},
	)

	DomainAggregationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_aggregations_total",
			Help: "Domain aura recomputations by result.",
		},
		[]string{"result"},
	)
)

var once sync.Once

// Init registers all collectors with the default registry. Safe to call
// more than once; collectors are usable before registration.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			URLsInQueue,
			CrawlsTotal,
			CrawlDuration,
			EnqueueTotal,
			AnalyzeTotal,
			DomainAggregationsTotal,
		)
	})
}
