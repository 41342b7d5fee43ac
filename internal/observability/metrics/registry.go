package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Source metrics.
var (
	DocumentsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textdigest_documents_fetched_total",
			Help: "Total number of documents produced by sources",
		},
		[]string{"kind"},
	)

	SourceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textdigest_source_errors_total",
			Help: "Total number of source fetch failures",
		},
		[]string{"kind", "error_type"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "textdigest_source_fetch_duration_seconds",
			Help:    "Time taken to fetch all documents of a source",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"kind"},
	)
)

// Digest metrics.
var (
	DigestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textdigest_digests_total",
			Help: "Total number of document digests by outcome",
		},
		[]string{"status"}, // status: summarized, empty, failed
	)

	DigestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textdigest_digest_runs_total",
			Help: "Total number of digest runs by outcome",
		},
		[]string{"status"},
	)

	DigestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "textdigest_digest_run_duration_seconds",
			Help:    "Time taken by a complete digest run",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	LastDigestRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "textdigest_last_digest_run_timestamp",
			Help: "Unix timestamp of the last completed digest run",
		},
	)
)

// Content enhancement metrics.
var (
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textdigest_content_fetch_attempts_total",
			Help: "Total number of article content fetch attempts for short feed items",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "textdigest_content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "textdigest_content_fetch_size_bytes",
			Help:    "Fetched article content size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 2, 18),
		},
	)
)
