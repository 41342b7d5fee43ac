package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"textdigest/internal/domain/entity"
	"textdigest/internal/resilience/circuitbreaker"
	"textdigest/internal/usecase/digest"
)

// Config bounds background delivery.
type Config struct {
	// MaxConcurrent is the number of deliveries in flight across all channels.
	MaxConcurrent int

	// WorkerPoolTimeout is how long a delivery waits for a free slot before
	// it is dropped.
	WorkerPoolTimeout time.Duration

	// NotificationTimeout bounds a single Send, retries included.
	NotificationTimeout time.Duration
}

// DefaultConfig returns the delivery limits used by the worker.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:       10,
		WorkerPoolTimeout:   5 * time.Second,
		NotificationTimeout: 30 * time.Second,
	}
}

// Validate checks that every limit is positive.
func (c Config) Validate() error {
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be positive, got %d", c.MaxConcurrent)
	}
	if c.WorkerPoolTimeout <= 0 {
		return fmt.Errorf("worker pool timeout must be positive, got %v", c.WorkerPoolTimeout)
	}
	if c.NotificationTimeout <= 0 {
		return fmt.Errorf("notification timeout must be positive, got %v", c.NotificationTimeout)
	}
	return nil
}

// ChannelHealthStatus represents the health of a notification channel.
type ChannelHealthStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
	State              string `json:"state"` // closed, half-open or open
}

// Service sends digests to every enabled channel in background goroutines.
// It is safe for concurrent use.
type Service struct {
	channels       []Channel
	breakers       map[string]*circuitbreaker.CircuitBreaker
	workerPool     chan struct{}
	config         Config
	wg             sync.WaitGroup
	closed         atomic.Bool
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService creates a notification service for channels. Each channel gets
// its own circuit breaker. An invalid cfg falls back to DefaultConfig.
func NewService(channels []Channel, cfg Config) *Service {
	if err := cfg.Validate(); err != nil {
		slog.Warn("invalid notification config, using defaults", slog.Any("error", err))
		cfg = DefaultConfig()
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &Service{
		channels:       channels,
		breakers:       make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		workerPool:     make(chan struct{}, cfg.MaxConcurrent),
		config:         cfg,
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	enabled := 0
	for _, ch := range channels {
		svc.breakers[ch.Name()] = circuitbreaker.New(circuitbreaker.WebhookConfig(ch.Name()))
		if ch.IsEnabled() {
			enabled++
		}
	}
	channelsEnabled.Set(float64(enabled))

	return svc
}

// NotifyReport dispatches every non-empty digest of report to every enabled
// channel. It returns immediately; failures are logged and counted but not
// returned. The run ID of the report is used as request ID.
func (s *Service) NotifyReport(ctx context.Context, report *digest.Report) error {
	if report == nil {
		return nil
	}
	if s.closed.Load() {
		return ErrServiceShutdown
	}

	requestID := report.RunID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var enabled []Channel
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabled = append(enabled, ch)
		}
	}
	if len(enabled) == 0 {
		slog.DebugContext(ctx, "No notification channels enabled",
			slog.String("request_id", requestID))
		return nil
	}

	slog.InfoContext(ctx, "Dispatching digest notifications",
		slog.String("request_id", requestID),
		slog.Int("digests", len(report.Digests)),
		slog.Int("enabled_channels", len(enabled)))

	for _, d := range report.Digests {
		for _, ch := range enabled {
			if d.Empty() {
				recordSkipped(ch.Name(), resultEmpty)
				continue
			}
			s.wg.Add(1)
			go s.notifyChannel(requestID, ch, d)
		}
	}
	return nil
}

// notifyChannel delivers d to a single channel.
func (s *Service) notifyChannel(requestID string, channel Channel, d entity.Digest) {
	defer s.wg.Done()

	inFlight.Inc()
	defer inFlight.Dec()

	logger := slog.Default().With(
		slog.String("request_id", requestID),
		slog.String("channel", channel.Name()),
		slog.String("origin", d.Document.Origin))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in notification channel",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	timer := time.NewTimer(s.config.WorkerPoolTimeout)
	select {
	case s.workerPool <- struct{}{}:
		timer.Stop()
		defer func() { <-s.workerPool }()
	case <-timer.C:
		logger.Warn("Notification dropped: worker pool full")
		recordSkipped(channel.Name(), resultPoolFull)
		return
	case <-s.shutdownCtx.Done():
		timer.Stop()
		recordSkipped(channel.Name(), resultShutdown)
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, s.config.NotificationTimeout)
	defer cancel()

	start := time.Now()

	_, err := circuitbreaker.Do(s.breakers[channel.Name()], func() (struct{}, error) {
		return struct{}{}, channel.Send(ctx, d)
	})
	duration := time.Since(start)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		logger.Warn("Channel temporarily disabled due to circuit breaker")
		recordSkipped(channel.Name(), resultCircuitOpen)
	case err != nil:
		recordSend(channel.Name(), duration, err)
		logger.Warn("Channel notification failed",
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
	default:
		recordSend(channel.Name(), duration, nil)
		logger.Info("Channel notification sent successfully",
			slog.String("title", d.Document.Title),
			slog.Duration("send_duration", duration))
	}
}

// GetChannelHealth returns the circuit breaker state of every channel.
func (s *Service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		breaker := s.breakers[ch.Name()]
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: breaker.IsOpen(),
			State:              breaker.State().String(),
		})
	}
	return statuses
}

// Flush waits until every dispatched notification has finished or ctx is done.
func (s *Service) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown rejects new reports, cancels in-flight deliveries and waits for
// them to return.
func (s *Service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down notification service")
	s.closed.Store(true)
	s.shutdownCancel()

	if err := s.Flush(ctx); err != nil {
		slog.Warn("Notification service shutdown timeout")
		return err
	}
	slog.Info("Notification service shutdown complete")
	return nil
}
