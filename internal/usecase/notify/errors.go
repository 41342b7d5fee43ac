package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrNotificationDropped indicates that a notification was dropped because
	// no worker slot became available in time.
	ErrNotificationDropped = errors.New("notification dropped due to pool saturation")

	// ErrCircuitBreakerOpen indicates that the channel's circuit breaker is open
	// and deliveries are rejected until it half-opens.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")

	// ErrServiceShutdown indicates that a digest was offered after Shutdown.
	ErrServiceShutdown = errors.New("notification service is shut down")
)
