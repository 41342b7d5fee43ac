// Package notify dispatches finished digests to notification channels
// (Slack, Discord). Each channel is guarded by its own circuit breaker and
// deliveries run in the background with bounded concurrency.
package notify

import (
	"context"

	"textdigest/internal/domain/entity"
)

// Channel is a notification delivery channel.
//
// Retry Policy Contract:
//   - Transient failures (5xx, network errors): retried with linear backoff
//   - Rate limits (429): wait for retry_after, then retry
//   - Client errors (4xx except 429): no retry
//   - Context timeout: no retry
//
// All methods must be safe for concurrent use.
type Channel interface {
	// Name returns the human-readable name of the channel, used in logs,
	// metric labels and health reports.
	Name() string

	// IsEnabled reports whether the channel is configured to receive digests.
	IsEnabled() bool

	// Send delivers one digest. Implementations respect ctx cancellation and
	// return a non-nil error only after their retries are exhausted.
	Send(ctx context.Context, d entity.Digest) error
}
