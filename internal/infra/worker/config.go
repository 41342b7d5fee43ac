package worker

import (
	"fmt"
	"log/slog"
	"time"

	"textdigest/internal/pkg/config"
)

// WorkerConfig holds the configuration of the digest worker: when digests run,
// how long they may take and where the worker serves its health checks.
//
// Example usage:
//
//	metrics := NewWorkerMetrics(nil)
//	cfg, err := LoadConfigFromEnv(logger, metrics)
//	if err != nil {
//	    // never happens: invalid values fall back to defaults
//	}
type WorkerConfig struct {
	// CronSchedule is the cron expression for digest runs.
	// Format: "minute hour day month weekday". Default: "0 7 * * *".
	CronSchedule string

	// Timezone is the IANA timezone name the schedule is evaluated in.
	// Default: "UTC".
	Timezone string

	// SourcesFile is the path of the YAML sources file. Default: "sources.yaml".
	SourcesFile string

	// Parallelism bounds concurrent source fetches and summaries. Range: 1-64.
	// Default: 4.
	Parallelism int

	// NotifyMaxConcurrent bounds concurrent webhook deliveries. Range: 1-50.
	// Default: 10.
	NotifyMaxConcurrent int

	// DigestTimeout bounds a single digest run, notifications included.
	// Range: 1m-4h. Default: 15 minutes.
	DigestTimeout time.Duration

	// HealthPort is the port of the health check server. Range: 1024-65535.
	// Default: 9091.
	HealthPort int

	// MetricsPort is the port of the Prometheus metrics server.
	// Range: 1024-65535. Default: 9090.
	MetricsPort int
}

// DefaultConfig returns a WorkerConfig running one digest a day at 07:00 UTC.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:        "0 7 * * *",
		Timezone:            "UTC",
		SourcesFile:         "sources.yaml",
		Parallelism:         4,
		NotifyMaxConcurrent: 10,
		DigestTimeout:       15 * time.Minute,
		HealthPort:          9091,
		MetricsPort:         9090,
	}
}

// Validate checks every field and returns all violations together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if c.SourcesFile == "" {
		errs = append(errs, fmt.Errorf("sources file: path is required"))
	}
	if err := config.ValidateIntRange(c.Parallelism, 1, 64); err != nil {
		errs = append(errs, fmt.Errorf("parallelism: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.DigestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("digest timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ, both are %d", c.HealthPort))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from the environment.
// Invalid values fall back to their defaults with a warning on logger and a
// recorded fallback on metrics; the returned error is always nil.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default: "0 7 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - SOURCES_FILE: path of the YAML sources file (default: "sources.yaml")
//   - DIGEST_PARALLELISM: integer 1-64 (default: 4)
//   - NOTIFY_MAX_CONCURRENT: integer 1-50 (default: 10)
//   - DIGEST_TIMEOUT: duration 1m-4h (default: 15m)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
//   - METRICS_PORT: integer 1024-65535 (default: 9090)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	observe := func(field string, result config.ConfigLoadResult) {
		if config.LogFallback(logger, field, result) {
			fallbackApplied = true
		}
		metrics.Observe(field, result)
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	observe("cron_schedule", result)
	cfg.CronSchedule = result.Value.(string)

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	observe("timezone", result)
	cfg.Timezone = result.Value.(string)

	cfg.SourcesFile = config.LoadEnvString("SOURCES_FILE", cfg.SourcesFile)

	result = config.LoadEnvInt("DIGEST_PARALLELISM", cfg.Parallelism, func(v int) error {
		return config.ValidateIntRange(v, 1, 64)
	})
	observe("parallelism", result)
	cfg.Parallelism = result.Value.(int)

	result = config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	observe("notify_max_concurrent", result)
	cfg.NotifyMaxConcurrent = result.Value.(int)

	result = config.LoadEnvDuration("DIGEST_TIMEOUT", cfg.DigestTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 4*time.Hour)
	})
	observe("digest_timeout", result)
	cfg.DigestTimeout = result.Value.(time.Duration)

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	observe("health_port", result)
	cfg.HealthPort = result.Value.(int)

	result = config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	observe("metrics_port", result)
	cfg.MetricsPort = result.Value.(int)

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
