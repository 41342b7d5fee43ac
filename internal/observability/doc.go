// Package observability groups the structured logging, Prometheus metrics and
// OpenTelemetry tracing used by the summarize command and the digest worker.
//
// Subpackages:
//   - logging: slog construction, level selection and context propagation
//   - metrics: digest business metrics on the default Prometheus registry
//   - tracing: tracer provider setup, spans and HTTP middleware
//
// Example usage:
//
//	logger := logging.NewLogger(os.Stderr, logging.LevelFromEnv())
//	ctx := logging.WithRunID(ctx, logger)
//	logging.FromContext(ctx).Info("digest started")
package observability
