package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ndarehe_admin"

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Admin API requests by method, resource and outcome.",
		},
		[]string{"method", "resource", "outcome"},
	)

	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Admin API request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	staleResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_stale_responses_total",
			Help:      "List responses discarded because a newer request superseded them.",
		},
		[]string{"screen"},
	)

	exportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_rows_total",
			Help:      "Rows written by exports.",
		},
		[]string{"entity", "format"},
	)

	dashboardPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_polls_total",
			Help:      "Dashboard activity polls by outcome.",
		},
		[]string{"outcome"},
	)

	notices = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_total",
			Help:      "Operator notices published by level.",
		},
		[]string{"level"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(apiRequests, apiLatency, staleResponses, exportRows, dashboardPolls, notices)
	})
}

func ObserveAPI(method, resource, outcome string, elapsed time.Duration) {
	apiRequests.WithLabelValues(method, resource, outcome).Inc()
	apiLatency.WithLabelValues(resource).Observe(elapsed.Seconds())
}

func IncStale(screen string) {
	staleResponses.WithLabelValues(screen).Inc()
}

func AddExportRows(entity, format string, rows int) {
	exportRows.WithLabelValues(entity, format).Add(float64(rows))
}

func IncPoll(outcome string) {
	dashboardPolls.WithLabelValues(outcome).Inc()
}

func IncNotice(level string) {
	notices.WithLabelValues(level).Inc()
}
