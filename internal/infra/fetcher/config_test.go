package fetcher

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1500, cfg.Threshold)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.Parallelism)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxBodySize)
	assert.Equal(t, 5, cfg.MaxRedirects)
	assert.True(t, cfg.DenyPrivateIPs)
	assert.NoError(t, cfg.Validate())
}

func TestContentFetchConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ContentFetchConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*ContentFetchConfig) {}},
		{name: "zero threshold always fetches", mutate: func(c *ContentFetchConfig) { c.Threshold = 0 }},
		{name: "negative threshold", mutate: func(c *ContentFetchConfig) { c.Threshold = -1 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *ContentFetchConfig) { c.Timeout = 0 }, wantErr: true},
		{name: "parallelism 0", mutate: func(c *ContentFetchConfig) { c.Parallelism = 0 }, wantErr: true},
		{name: "parallelism 51", mutate: func(c *ContentFetchConfig) { c.Parallelism = 51 }, wantErr: true},
		{name: "body below 1KB", mutate: func(c *ContentFetchConfig) { c.MaxBodySize = 512 }, wantErr: true},
		{name: "body above 100MB", mutate: func(c *ContentFetchConfig) { c.MaxBodySize = 101 * 1024 * 1024 }, wantErr: true},
		{name: "no redirects", mutate: func(c *ContentFetchConfig) { c.MaxRedirects = 0 }},
		{name: "11 redirects", mutate: func(c *ContentFetchConfig) { c.MaxRedirects = 11 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("CONTENT_FETCH_ENABLED", "false")
		t.Setenv("CONTENT_FETCH_THRESHOLD", "2000")
		t.Setenv("CONTENT_FETCH_TIMEOUT", "15s")
		t.Setenv("CONTENT_FETCH_PARALLELISM", "20")
		t.Setenv("CONTENT_FETCH_MAX_BODY_SIZE", "2048")
		t.Setenv("CONTENT_FETCH_MAX_REDIRECTS", "3")
		t.Setenv("CONTENT_FETCH_DENY_PRIVATE_IPS", "false")

		cfg, err := LoadConfigFromEnv(logger)
		require.NoError(t, err)
		assert.False(t, cfg.Enabled)
		assert.Equal(t, 2000, cfg.Threshold)
		assert.Equal(t, 15*time.Second, cfg.Timeout)
		assert.Equal(t, 20, cfg.Parallelism)
		assert.Equal(t, int64(2048), cfg.MaxBodySize)
		assert.Equal(t, 3, cfg.MaxRedirects)
		assert.False(t, cfg.DenyPrivateIPs)
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		t.Setenv("CONTENT_FETCH_THRESHOLD", "lots")
		t.Setenv("CONTENT_FETCH_TIMEOUT", "soon")

		cfg, err := LoadConfigFromEnv(logger)
		require.NoError(t, err)
		assert.Equal(t, 1500, cfg.Threshold)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
	})

	t.Run("out of range values fail validation", func(t *testing.T) {
		t.Setenv("CONTENT_FETCH_PARALLELISM", "500")

		_, err := LoadConfigFromEnv(logger)
		assert.Error(t, err)
	})
}
