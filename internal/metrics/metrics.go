package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agsavn_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agsavn_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Ingest metrics
	MeasurementsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agsavn_measurements_ingested_total",
			Help: "Measurements accepted or rejected, by ingestion path",
		},
		[]string{"source", "result"}, // source: http|mqtt, result: ok|invalid|error
	)

	// Alerting metrics
	AlertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agsavn_alerts_created_total",
			Help: "Alerts raised by the threshold evaluator",
		},
		[]string{"severity", "threshold_type"},
	)

	AlertActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agsavn_alert_actions_total",
			Help: "Alert lifecycle actions, by outcome",
		},
		[]string{"action", "result"}, // result: ok|invalid_transition|error
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agsavn_alert_notifications_total",
			Help: "Alert notifications delivered to each sink",
		},
		[]string{"sink", "result"},
	)

	StatsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agsavn_stats_cache_total",
			Help: "Alert statistics cache lookups",
		},
		[]string{"result"}, // hit|miss
	)

	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agsavn_panics_recovered_total",
			Help: "Panics recovered, by component",
		},
		[]string{"component"},
	)
)
