package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SummaryMetricsRecorder records per-summary measurements.
// Tests inject a fake; production uses PrometheusSummaryMetrics.
type SummaryMetricsRecorder interface {
	// RecordSentences records the source sentence count and the number of sentences kept.
	RecordSentences(method Method, total, selected int)

	// RecordEmpty counts a summary that kept no sentence, by reason
	// ("no_vocabulary", "ratio_too_small").
	RecordEmpty(method Method, reason string)

	// RecordDuration records the time taken to produce one summary.
	RecordDuration(method Method, duration time.Duration)
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder on the default registry.
type PrometheusSummaryMetrics struct {
	sourceSentences   *prometheus.HistogramVec
	selectedSentences *prometheus.HistogramVec
	emptyTotal        *prometheus.CounterVec
	durationHistogram *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusSummaryMetrics
	prometheusMetricsOnce     sync.Once
)

func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusSummaryMetrics returns the process-wide recorder, registering
// its collectors on first use.
func NewPrometheusSummaryMetrics() *PrometheusSummaryMetrics {
	prometheusMetricsOnce.Do(func() {
		sentenceBuckets := []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}
		prometheusMetricsInstance = &PrometheusSummaryMetrics{
			sourceSentences: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "textdigest_summary_source_sentences",
				Help:    "Distribution of sentence counts in summarized documents",
				Buckets: sentenceBuckets,
			}, []string{"method"}),
			selectedSentences: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "textdigest_summary_selected_sentences",
				Help:    "Distribution of sentence counts kept in summaries",
				Buckets: sentenceBuckets,
			}, []string{"method"}),
			emptyTotal: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "textdigest_summary_empty_total",
				Help: "Total number of summaries that kept no sentence",
			}, []string{"method", "reason"}),
			durationHistogram: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "textdigest_summarization_duration_seconds",
				Help:    "Time taken to generate a summary",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			}, []string{"method"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordSentences implements SummaryMetricsRecorder.RecordSentences
func (p *PrometheusSummaryMetrics) RecordSentences(method Method, total, selected int) {
	p.sourceSentences.WithLabelValues(string(method)).Observe(float64(total))
	p.selectedSentences.WithLabelValues(string(method)).Observe(float64(selected))
}

// RecordEmpty implements SummaryMetricsRecorder.RecordEmpty
func (p *PrometheusSummaryMetrics) RecordEmpty(method Method, reason string) {
	p.emptyTotal.WithLabelValues(string(method), reason).Inc()
}

// RecordDuration implements SummaryMetricsRecorder.RecordDuration
func (p *PrometheusSummaryMetrics) RecordDuration(method Method, duration time.Duration) {
	p.durationHistogram.WithLabelValues(string(method)).Observe(duration.Seconds())
}
