package fetcher

import (
	"fmt"
	"log/slog"
	"time"

	"textdigest/internal/pkg/config"
)

// ContentFetchConfig holds the configuration for article downloads.
//
// Security settings:
//   - DenyPrivateIPs: blocks loopback, private and link-local targets (SSRF)
//   - MaxBodySize: bounds memory used by a single response
//   - MaxRedirects: bounds the redirect chain
//   - Timeout: bounds a single request
type ContentFetchConfig struct {
	// Enabled controls whether feed items are enhanced with the article text.
	// URL sources always fetch. Default: true
	Enabled bool

	// Threshold is the feed item text length, in characters, below which the
	// article is fetched. Default: 1500
	Threshold int

	// Timeout is the maximum duration of one HTTP request. Default: 10s
	Timeout time.Duration

	// Parallelism is the maximum number of concurrent article downloads of a
	// feed source. Default: 10
	Parallelism int

	// MaxBodySize is the maximum response body size in bytes, enforced while
	// reading. Default: 10MB
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects followed. Default: 5
	MaxRedirects int

	// DenyPrivateIPs rejects hosts resolving to private addresses. Default: true
	DenyPrivateIPs bool
}

// DefaultConfig returns the default configuration for content fetching.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Enabled:        true,
		Threshold:      1500,
		Timeout:        10 * time.Second,
		Parallelism:    10,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks if the configuration values are valid and safe.
//
// Validation rules:
//   - Threshold: >= 0 (0 always fetches)
//   - Timeout: > 0
//   - Parallelism: 1-50
//   - MaxBodySize: 1KB-100MB
//   - MaxRedirects: 0-10
func (c *ContentFetchConfig) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if err := config.ValidateIntRange(c.Parallelism, 1, 50); err != nil {
		return fmt.Errorf("parallelism: %w", err)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}
	if err := config.ValidateIntRange(c.MaxRedirects, 0, 10); err != nil {
		return fmt.Errorf("max redirects: %w", err)
	}
	return nil
}

// LoadConfigFromEnv loads configuration from environment variables. Unset
// variables keep their defaults; malformed ones fall back with a warning on
// logger. The result is validated.
//
// Environment variables:
//   - CONTENT_FETCH_ENABLED: "true" or "false" (default: true)
//   - CONTENT_FETCH_THRESHOLD: integer (default: 1500)
//   - CONTENT_FETCH_TIMEOUT: duration string, e.g. "10s" (default: 10s)
//   - CONTENT_FETCH_PARALLELISM: integer (default: 10)
//   - CONTENT_FETCH_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//   - CONTENT_FETCH_MAX_REDIRECTS: integer (default: 5)
//   - CONTENT_FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
func LoadConfigFromEnv(logger *slog.Logger) (ContentFetchConfig, error) {
	cfg := DefaultConfig()

	result := config.LoadEnvBool("CONTENT_FETCH_ENABLED", cfg.Enabled)
	config.LogFallback(logger, "content_fetch_enabled", result)
	cfg.Enabled = result.Value.(bool)

	result = config.LoadEnvInt("CONTENT_FETCH_THRESHOLD", cfg.Threshold, nil)
	config.LogFallback(logger, "content_fetch_threshold", result)
	cfg.Threshold = result.Value.(int)

	result = config.LoadEnvDuration("CONTENT_FETCH_TIMEOUT", cfg.Timeout, config.ValidatePositiveDuration)
	config.LogFallback(logger, "content_fetch_timeout", result)
	cfg.Timeout = result.Value.(time.Duration)

	result = config.LoadEnvInt("CONTENT_FETCH_PARALLELISM", cfg.Parallelism, nil)
	config.LogFallback(logger, "content_fetch_parallelism", result)
	cfg.Parallelism = result.Value.(int)

	result = config.LoadEnvInt("CONTENT_FETCH_MAX_BODY_SIZE", int(cfg.MaxBodySize), nil)
	config.LogFallback(logger, "content_fetch_max_body_size", result)
	cfg.MaxBodySize = int64(result.Value.(int))

	result = config.LoadEnvInt("CONTENT_FETCH_MAX_REDIRECTS", cfg.MaxRedirects, nil)
	config.LogFallback(logger, "content_fetch_max_redirects", result)
	cfg.MaxRedirects = result.Value.(int)

	result = config.LoadEnvBool("CONTENT_FETCH_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)
	config.LogFallback(logger, "content_fetch_deny_private_ips", result)
	cfg.DenyPrivateIPs = result.Value.(bool)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
