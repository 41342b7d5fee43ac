// Package circuitbreaker wraps github.com/sony/gobreaker for the outbound calls
// of a digest run: feed downloads, page scrapes, article downloads and webhook
// deliveries. Every breaker reports its state on the default Prometheus
// registry under its name.
package circuitbreaker

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	// stateGauge is 0 when closed, 1 when half-open and 2 when open.
	stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "textdigest_circuit_breaker_state",
		Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"circuit"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textdigest_circuit_breaker_transitions_total",
		Help: "Total number of circuit breaker state transitions by target state",
	}, []string{"circuit", "to"})
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	Name string

	// MaxRequests calls are let through while half-open.
	MaxRequests uint32

	// Interval clears the counts while closed. Zero never clears them.
	Interval time.Duration

	// Timeout is the time spent open before the breaker goes half-open.
	Timeout time.Duration

	// The breaker trips once at least MinRequests calls were counted and
	// the share of failures reaches FailureThreshold.
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultConfig suits a single upstream that is called a few times per run.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          time.Minute,
		MinRequests:      5,
		FailureThreshold: 0.6,
	}
}

// FeedFetchConfig is shared by every feed download, so one broken feed
// host must not trip it on its own.
func FeedFetchConfig() Config {
	cfg := DefaultConfig("feed-fetch")
	cfg.MaxRequests = 5
	cfg.Interval = time.Minute
	cfg.Timeout = 2 * time.Minute
	cfg.MinRequests = 10
	cfg.FailureThreshold = 0.7
	return cfg
}

// ArticleFetchConfig is shared by every article download. Articles come
// from many hosts and fail individually, hence the high threshold.
func ArticleFetchConfig() Config {
	cfg := DefaultConfig("article-fetch")
	cfg.Interval = time.Minute
	cfg.Timeout = 2 * time.Minute
	cfg.FailureThreshold = 0.8
	return cfg
}

// WebhookConfig guards one notification channel.
func WebhookConfig(channel string) Config {
	cfg := DefaultConfig(channel + "-webhook")
	cfg.Timeout = 5 * time.Minute
	return cfg
}

// CircuitBreaker is a named gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a closed breaker.
func New(cfg Config) *CircuitBreaker {
	stateGauge.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))

	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.MinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
			},
			OnStateChange: onStateChange,
		}),
	}
}

func onStateChange(name string, from, to gobreaker.State) {
	stateGauge.WithLabelValues(name).Set(stateValue(to))
	transitionsTotal.WithLabelValues(name, to.String()).Inc()

	level := slog.LevelWarn
	if to == gobreaker.StateClosed {
		level = slog.LevelInfo
	}
	slog.Log(context.Background(), level, "circuit breaker state changed",
		slog.String("circuit", name),
		slog.String("from", from.String()),
		slog.String("to", to.String()))
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Do runs fn through cb and returns its typed result. While the circuit is
// open fn is not called and the error is gobreaker.ErrOpenState; in
// half-open state excess calls get gobreaker.ErrTooManyRequests.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	result, err := cb.breaker.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := result.(T)
	return v, nil
}

func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

func (cb *CircuitBreaker) Name() string { return cb.name }

func (cb *CircuitBreaker) IsOpen() bool { return cb.State() == gobreaker.StateOpen }
