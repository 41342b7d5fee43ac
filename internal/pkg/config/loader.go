// Package config provides fail-open environment loaders and validators shared by
// the summarizer, the digest worker and the command line tools.
//
// Every loader returns a ConfigLoadResult instead of an error: an unset variable
// yields the default silently, a malformed or invalid one yields the default
// together with a warning the caller is expected to log.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult represents the result of loading a configuration value.
//
// Example:
//
//	result := LoadEnvDuration("DIGEST_TIMEOUT", 10*time.Minute, ValidatePositiveDuration)
//	for _, warning := range result.Warnings {
//	    slog.Warn("Configuration fallback applied", slog.String("warning", warning))
//	}
//	timeout := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func loaded(value interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: value}
}

func fellBack(envKey, raw string, reason interface{}, defaultValue interface{}) ConfigLoadResult {
	return ConfigLoadResult{
		Value: defaultValue,
		Warnings: []string{fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'",
			envKey, raw, reason, defaultValue,
		)},
		FallbackApplied: true,
	}
}

// LoadEnvString returns the value of envKey, or defaultValue when unset or empty.
// No validation is performed.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string from envKey and validates it.
// validator may be nil.
//
// Example:
//
//	result := LoadEnvWithFallback("CRON_SCHEDULE", "0 7 * * *", ValidateCronSchedule)
//	schedule := result.Value.(string)
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return loaded(defaultValue)
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fellBack(envKey, value, err, defaultValue)
		}
	}
	return loaded(value)
}

// LoadEnvDuration loads a Go duration string ("30s", "1h30m") from envKey.
// validator may be nil.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fellBack(envKey, raw, err, defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fellBack(envKey, raw, err, defaultValue)
		}
	}
	return loaded(parsed)
}

// LoadEnvInt loads a base-10 integer from envKey. validator may be nil.
//
// Example:
//
//	result := LoadEnvInt("DIGEST_PARALLELISM", 4, func(v int) error { return ValidateIntRange(v, 1, 64) })
//	parallelism := result.Value.(int)
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fellBack(envKey, raw, "invalid integer format", defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fellBack(envKey, raw, err, defaultValue)
		}
	}
	return loaded(parsed)
}

// LoadEnvFloat loads a decimal number from envKey. validator may be nil.
//
// Example:
//
//	result := LoadEnvFloat("SUMMARY_RATIO", 0.1, func(v float64) error { return ValidateFloatRange(v, 0, 1) })
//	ratio := result.Value.(float64)
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fellBack(envKey, raw, "invalid number format", defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fellBack(envKey, raw, err, defaultValue)
		}
	}
	return loaded(parsed)
}

// LoadEnvBool loads a boolean from envKey.
// Accepted values are those of strconv.ParseBool: 1, t, T, TRUE, true, True and
// their false counterparts.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fellBack(envKey, raw, "invalid boolean format, expected 'true' or 'false'", defaultValue)
	}
	return loaded(parsed)
}

// LogFallback logs every warning of result against field and reports whether a
// fallback was applied.
func LogFallback(logger *slog.Logger, field string, result ConfigLoadResult) bool {
	for _, warning := range result.Warnings {
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
	return result.FallbackApplied
}
