package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery outcomes, used as the result label of textdigest_notify_deliveries_total.
const (
	resultSent        = "sent"
	resultFailed      = "failed"
	resultEmpty       = "empty"
	resultPoolFull    = "pool_full"
	resultShutdown    = "shutdown"
	resultCircuitOpen = "circuit_open"
)

var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textdigest_notify_deliveries_total",
		Help: "Digest deliveries per channel by result",
	}, []string{"channel", "result"})

	sendSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "textdigest_notify_send_seconds",
		Help:    "Time spent in Channel.Send, successful or not",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
	}, []string{"channel"})

	rateLimitWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "textdigest_notify_rate_limit_wait_seconds",
		Help:    "Wait imposed by 429 responses of a webhook service",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"channel"})

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "textdigest_notify_in_flight",
		Help: "Deliveries waiting for or holding a worker slot",
	})

	channelsEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "textdigest_notify_channels_enabled",
		Help: "Number of enabled notification channels",
	})
)

func recordSend(channel string, took time.Duration, err error) {
	result := resultSent
	if err != nil {
		result = resultFailed
	}
	deliveriesTotal.WithLabelValues(channel, result).Inc()
	sendSeconds.WithLabelValues(channel).Observe(took.Seconds())
}

func recordSkipped(channel, result string) {
	deliveriesTotal.WithLabelValues(channel, result).Inc()
}

// RecordRateLimited is called by channels when a webhook service answered 429
// and the delivery waits for wait before trying again.
func RecordRateLimited(channel string, wait time.Duration) {
	rateLimitWaitSeconds.WithLabelValues(channel).Observe(wait.Seconds())
}
