package summarizer

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"textdigest/internal/pkg/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, MethodFrequency, cfg.Method)
	assert.Equal(t, 0.1, cfg.Ratio)
	assert.False(t, cfg.FoldCase)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"lead at full ratio", Config{Method: MethodLead, Ratio: 1}, false},
		{"unknown method", Config{Method: "llm", Ratio: 0.1}, true},
		{"zero ratio", Config{Method: MethodFrequency, Ratio: 0}, true},
		{"ratio above one", Config{Method: MethodFrequency, Ratio: 1.2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SUMMARY_METHOD", "lead")
	t.Setenv("SUMMARY_RATIO", "0.25")
	t.Setenv("SUMMARY_FOLD_CASE", "true")

	var buf bytes.Buffer
	cfg := LoadConfigFromEnv(slog.New(slog.NewTextHandler(&buf, nil)), nil)

	assert.Equal(t, Config{Method: MethodLead, Ratio: 0.25, FoldCase: true}, cfg)
	assert.Empty(t, buf.String())
}

func TestLoadConfigFromEnv_Fallbacks(t *testing.T) {
	t.Setenv("SUMMARY_METHOD", "abstractive")
	t.Setenv("SUMMARY_RATIO", "1.5")
	t.Setenv("SUMMARY_FOLD_CASE", "maybe")

	var buf bytes.Buffer
	metrics := config.NewConfigMetrics("test_summarizer", prometheus.NewRegistry())
	cfg := LoadConfigFromEnv(slog.New(slog.NewTextHandler(&buf, nil)), metrics)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Contains(t, buf.String(), "SUMMARY_METHOD")
	assert.Contains(t, buf.String(), "SUMMARY_RATIO")
	assert.Contains(t, buf.String(), "SUMMARY_FOLD_CASE")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("ratio")))
}
