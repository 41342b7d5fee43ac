package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"textdigest/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the worker. It embeds the
// configuration metrics (textdigest_worker_config_*) and adds scheduled run
// metrics:
//
//	textdigest_worker_job_runs_total{status}
//	textdigest_worker_job_duration_seconds
//	textdigest_worker_job_documents_total
//	textdigest_worker_job_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal            *prometheus.CounterVec
	JobDurationSeconds      prometheus.Histogram
	JobDocumentsTotal       prometheus.Counter
	JobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics on reg, or on the default
// registry when reg is nil. It must be called once per registry.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("textdigest_worker", reg),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "textdigest_worker_job_runs_total",
			Help: "Total number of scheduled digest runs by status (started/success/failure)",
		}, []string{"status"}),

		JobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "textdigest_worker_job_duration_seconds",
			Help:    "Duration of scheduled digest runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		JobDocumentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "textdigest_worker_job_documents_total",
			Help: "Total number of documents digested by scheduled runs",
		}),

		JobLastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "textdigest_worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled digest run",
		}),
	}
}

// RecordJobRun counts a run transition: started, success or failure.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a run in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordDocuments adds the number of documents digested by a run.
func (m *WorkerMetrics) RecordDocuments(count int) {
	m.JobDocumentsTotal.Add(float64(count))
}

// RecordLastSuccess sets the last success timestamp to now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}
