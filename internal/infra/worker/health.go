package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	hhttp "textdigest/internal/handler/http"
	"textdigest/internal/usecase/notify"
)

// ChannelHealthReporter reports the state of the notification channels.
type ChannelHealthReporter interface {
	GetChannelHealth() []notify.ChannelHealthStatus
}

// HealthServer provides the worker's health endpoints:
//   - /health: liveness (always 200 OK)
//   - /health/ready: readiness (200 once SetReady(true), 503 before)
//   - /health/channels: notification channels (503 when an enabled channel's
//     circuit breaker is open)
//
// Example usage:
//
//	healthServer := NewHealthServer(":9091", logger, notifyService)
//	go func() {
//	    if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
//	        logger.Error("health server failed", slog.Any("error", err))
//	    }
//	}()
//	healthServer.SetReady(true)
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	isReady  atomic.Bool
	channels ChannelHealthReporter
	lastRun  atomic.Pointer[RunSummary]
}

// RunSummary is the outcome of the latest digest run, served on /health/ready.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	FinishedAt time.Time `json:"finished_at"`
	Documents  int       `json:"documents"`
	Failed     bool      `json:"failed"`
}

type healthResponse struct {
	Status  string      `json:"status"`
	LastRun *RunSummary `json:"last_run,omitempty"`
}

type channelHealthResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// NewHealthServer creates a health server listening on addr. channels may be
// nil when no notification service is configured.
func NewHealthServer(addr string, logger *slog.Logger, channels ChannelHealthReporter) *HealthServer {
	return &HealthServer{
		addr:     addr,
		logger:   logger,
		channels: channels,
	}
}

// Handler returns the health routes wrapped in the operational middleware chain.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	mux.HandleFunc("GET /health/channels", h.handleChannels)
	return hhttp.Instrument(mux, h.logger)
}

// Start serves until ctx is canceled, then shuts down within 5 seconds and
// returns http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady sets the readiness state served on /health/ready.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// RecordRun stores the outcome of the latest digest run.
func (h *HealthServer) RecordRun(summary RunSummary) {
	h.lastRun.Store(&summary)
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	hhttp.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !h.isReady.Load() {
		hhttp.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}
	hhttp.JSON(w, http.StatusOK, healthResponse{Status: "ok", LastRun: h.lastRun.Load()})
}

func (h *HealthServer) handleChannels(w http.ResponseWriter, r *http.Request) {
	resp := channelHealthResponse{Healthy: true, Channels: []notify.ChannelHealthStatus{}}
	if h.channels != nil {
		resp.Channels = h.channels.GetChannelHealth()
	}
	for _, ch := range resp.Channels {
		if ch.Enabled && ch.CircuitBreakerOpen {
			resp.Healthy = false
		}
	}

	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusServiceUnavailable
	}
	hhttp.JSON(w, status, resp)
}
