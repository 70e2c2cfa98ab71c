package handler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	scansProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "depo_service",
			Subsystem: "kafka_consumer",
			Name:      "scans_processed_total",
			Help:      "Total number of successfully applied scan events",
		},
	)

	scansFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "depo_service",
			Subsystem: "kafka_consumer",
			Name:      "scans_failed_total",
			Help:      "Total number of failed scan processing attempts",
		},
	)

	scansDLQ = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "depo_service",
			Subsystem: "kafka_consumer",
			Name:      "scans_dlq_total",
			Help:      "Total number of scans written to DLQ",
		},
	)
)

var (
	trackRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "depo_service",
			Subsystem: "http",
			Name:      "track_requests_total",
			Help:      "Total number of public tracking requests",
		},
		[]string{"status"},
	)

	trackRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "depo_service",
			Subsystem: "http",
			Name:      "track_request_duration_seconds",
			Help:      "Histogram of public tracking request durations",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func observeTrackRequest(err error, took time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	trackRequestTotal.WithLabelValues(status).Inc()
	trackRequestDuration.Observe(took.Seconds())
}

func RegisterMetrics() {
	prometheus.MustRegister(
		scansProcessed,
		scansFailed,
		scansDLQ,

		trackRequestTotal,
		trackRequestDuration,
	)
}
