package summarizer

import (
	"fmt"
	"log/slog"

	"textdigest/internal/domain/entity"
	"textdigest/internal/pkg/config"
)

// Method names a sentence selection strategy.
type Method string

const (
	// MethodFrequency ranks sentences by summed word-frequency weight.
	MethodFrequency Method = "frequency"
	// MethodLead keeps the first sentences of the document.
	MethodLead Method = "lead"
)

// DefaultRatio is the share of sentences kept when nothing else is configured.
const DefaultRatio = 0.1

// Config holds summarizer settings.
type Config struct {
	// Method selects the strategy. Loaded from SUMMARY_METHOD. Default: frequency.
	Method Method

	// Ratio is the share of source sentences kept, in (0, 1].
	// Loaded from SUMMARY_RATIO. Default: 0.1.
	Ratio float64

	// FoldCase counts words case-insensitively. Loaded from SUMMARY_FOLD_CASE.
	// Default: false.
	FoldCase bool
}

// DefaultConfig returns the frequency strategy at a ratio of 0.1 with
// case-sensitive counting.
func DefaultConfig() Config {
	return Config{
		Method: MethodFrequency,
		Ratio:  DefaultRatio,
	}
}

// Validate checks the method and ratio.
func (c Config) Validate() error {
	if err := ValidateMethod(string(c.Method)); err != nil {
		return err
	}
	if err := entity.ValidateRatio(c.Ratio); err != nil {
		return fmt.Errorf("summary ratio: %w", err)
	}
	return nil
}

// ValidateMethod checks that method names a known strategy.
func ValidateMethod(method string) error {
	switch Method(method) {
	case MethodFrequency, MethodLead:
		return nil
	default:
		return fmt.Errorf("unknown summary method %q (must be frequency or lead)", method)
	}
}

// LoadConfigFromEnv loads Config from the environment. Invalid values fall back
// to their defaults with a warning on logger and, when metrics is non-nil, a
// recorded fallback.
//
// Environment variables:
//   - SUMMARY_METHOD: frequency or lead
//   - SUMMARY_RATIO: share of sentences kept, in (0, 1]
//   - SUMMARY_FOLD_CASE: count words case-insensitively
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.ConfigMetrics) Config {
	cfg := DefaultConfig()
	fallback := false

	observe := func(field string, result config.ConfigLoadResult) {
		if config.LogFallback(logger, field, result) {
			fallback = true
		}
		if metrics != nil {
			metrics.Observe(field, result)
		}
	}

	result := config.LoadEnvWithFallback("SUMMARY_METHOD", string(cfg.Method), ValidateMethod)
	observe("method", result)
	cfg.Method = Method(result.Value.(string))

	result = config.LoadEnvFloat("SUMMARY_RATIO", cfg.Ratio, func(v float64) error {
		return config.ValidateFloatRange(v, 0, 1)
	})
	observe("ratio", result)
	cfg.Ratio = result.Value.(float64)

	result = config.LoadEnvBool("SUMMARY_FOLD_CASE", cfg.FoldCase)
	observe("fold_case", result)
	cfg.FoldCase = result.Value.(bool)

	if metrics != nil {
		metrics.SetFallbackActive(fallback)
		metrics.RecordLoadTimestamp()
	}
	return cfg
}
