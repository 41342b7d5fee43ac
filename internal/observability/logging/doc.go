// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package. Loggers write
// JSON lines; the level comes from LOG_LEVEL unless a caller overrides it
// (the summarize command lowers it to debug with --verbose).
//
// Example usage:
//
//	logger := logging.NewLogger(os.Stderr, logging.LevelFromEnv())
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRunID(ctx, logger)
//	logging.FromContext(ctx).Info("digest started")
package logging
