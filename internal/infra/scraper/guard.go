package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker"

	"textdigest/internal/resilience/circuitbreaker"
	"textdigest/internal/resilience/retry"
)

// userAgent identifies feed and page downloads.
const userAgent = "TextDigestBot/1.0"

// guarded runs fetch through cb and retries transient failures under policy.
// A rejection by the open breaker is final for this call.
func guarded[T any](ctx context.Context, cb *circuitbreaker.CircuitBreaker, policy retry.Config,
	target string, fetch func() (T, error)) (T, error) {
	var result T
	err := retry.WithBackoff(ctx, policy, func() error {
		v, err := circuitbreaker.Do(cb, fetch)
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("circuit breaker open, request rejected",
				slog.String("circuit", cb.Name()),
				slog.String("url", target))
		}
		result = v
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
