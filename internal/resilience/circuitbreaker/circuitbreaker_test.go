package circuitbreaker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          50 * time.Millisecond,
		MinRequests:      5,
		FailureThreshold: 0.6,
	}
}

var errTest = errors.New("test error")

func fail(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_, _ = Do(cb, func() (struct{}, error) { return struct{}{}, errTest })
	}
}

/* ───────── construction ───────── */

func TestNew(t *testing.T) {
	cb := New(DefaultConfig("feeds"))

	require.NotNil(t, cb)
	assert.Equal(t, "feeds", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
	assert.Equal(t, 0.0, testutil.ToFloat64(stateGauge.WithLabelValues("feeds")))
}

func TestPresets(t *testing.T) {
	tests := []struct {
		cfg     Config
		name    string
		timeout time.Duration
	}{
		{DefaultConfig("x"), "x", time.Minute},
		{FeedFetchConfig(), "feed-fetch", 2 * time.Minute},
		{ArticleFetchConfig(), "article-fetch", 2 * time.Minute},
		{WebhookConfig("slack"), "slack-webhook", 5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.cfg.Name)
			assert.Equal(t, tt.timeout, tt.cfg.Timeout)
			assert.Greater(t, tt.cfg.MinRequests, uint32(0))
			assert.Greater(t, tt.cfg.FailureThreshold, 0.0)
		})
	}
}

/* ───────── Do ───────── */

func TestDo(t *testing.T) {
	cb := New(testConfig("do"))

	n, err := Do(cb, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	boom := errors.New("boom")
	s, err := Do(cb, func() (string, error) { return "partial", boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s)

	var missing fmt.Stringer
	got, err := Do(cb, func() (fmt.Stringer, error) { return missing, nil })
	require.NoError(t, err)
	assert.Nil(t, got)
}

/* ───────── state transitions ───────── */

func TestCircuitBreaker_TripsOpen(t *testing.T) {
	cb := New(testConfig("trips"))

	fail(cb, 4)
	assert.False(t, cb.IsOpen(), "below MinRequests the circuit stays closed")

	fail(cb, 1)
	assert.True(t, cb.IsOpen())
	assert.Equal(t, 2.0, testutil.ToFloat64(stateGauge.WithLabelValues("trips")))
	assert.Equal(t, 1.0, testutil.ToFloat64(transitionsTotal.WithLabelValues("trips", "open")))

	called := false
	_, err := Do(cb, func() (bool, error) {
		called = true
		return true, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := New(testConfig("recovers"))
	fail(cb, 5)
	require.True(t, cb.IsOpen())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, cb.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(stateGauge.WithLabelValues("recovers")))

	_, err := Do(cb, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Equal(t, 0.0, testutil.ToFloat64(stateGauge.WithLabelValues("recovers")))
	assert.Equal(t, 1.0, testutil.ToFloat64(transitionsTotal.WithLabelValues("recovers", "closed")))
}
