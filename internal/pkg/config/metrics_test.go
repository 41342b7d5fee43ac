package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewConfigMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetrics("test_component", reg)

	m.RecordLoadTimestamp()
	m.RecordValidationError("ratio")

	count, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Greater(t, testutil.ToFloat64(m.LoadTimestamp), 0.0)
}

func TestConfigMetrics_Observe(t *testing.T) {
	m := NewConfigMetrics("test_observe", prometheus.NewRegistry())

	m.Observe("ratio", ConfigLoadResult{Value: 0.1})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("ratio")))

	m.Observe("ratio", ConfigLoadResult{Value: 0.1, FallbackApplied: true, Warnings: []string{"bad"}})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("ratio")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("ratio")))
}

func TestConfigMetrics_SetFallbackActive(t *testing.T) {
	m := NewConfigMetrics("test_active", prometheus.NewRegistry())

	m.SetFallbackActive(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))

	m.SetFallbackActive(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackActive))
}
