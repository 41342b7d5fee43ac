package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textdigest/internal/usecase/notify"
)

type stubChannels []notify.ChannelHealthStatus

func (s stubChannels) GetChannelHealth() []notify.ChannelHealthStatus { return s }

func newTestHealthServer(channels ChannelHealthReporter) *HealthServer {
	return NewHealthServer("127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)), channels)
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthServer_Liveness(t *testing.T) {
	rec, body := get(t, newTestHealthServer(nil).Handler(), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthServer_Readiness(t *testing.T) {
	server := newTestHealthServer(nil)
	handler := server.Handler()

	rec, body := get(t, handler, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body["status"])

	server.SetReady(true)
	rec, body = get(t, handler, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body, "last_run")

	server.RecordRun(RunSummary{RunID: "run-7", Documents: 3, FinishedAt: time.Now()})
	_, body = get(t, handler, "/health/ready")
	lastRun, ok := body["last_run"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "run-7", lastRun["run_id"])
	assert.Equal(t, 3.0, lastRun["documents"])
}

func TestHealthServer_Channels(t *testing.T) {
	tests := []struct {
		name        string
		channels    ChannelHealthReporter
		wantStatus  int
		wantHealthy bool
	}{
		{name: "no notify service", channels: nil, wantStatus: http.StatusOK, wantHealthy: true},
		{
			name: "all closed",
			channels: stubChannels{
				{Name: "Slack", Enabled: true, State: "closed"},
			},
			wantStatus:  http.StatusOK,
			wantHealthy: true,
		},
		{
			name: "open breaker on disabled channel",
			channels: stubChannels{
				{Name: "Discord", Enabled: false, CircuitBreakerOpen: true, State: "open"},
			},
			wantStatus:  http.StatusOK,
			wantHealthy: true,
		},
		{
			name: "open breaker on enabled channel",
			channels: stubChannels{
				{Name: "Slack", Enabled: true, State: "closed"},
				{Name: "Discord", Enabled: true, CircuitBreakerOpen: true, State: "open"},
			},
			wantStatus:  http.StatusServiceUnavailable,
			wantHealthy: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := get(t, newTestHealthServer(tt.channels).Handler(), "/health/channels")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantHealthy, body["healthy"])
		})
	}
}

func TestHealthServer_RejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHealthServer(nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthServer_StartStops(t *testing.T) {
	server := newTestHealthServer(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, http.ErrServerClosed))
	case <-time.After(6 * time.Second):
		t.Fatal("health server did not stop")
	}
}
