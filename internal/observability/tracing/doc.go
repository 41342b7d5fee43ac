// Package tracing provides OpenTelemetry tracing for digest runs.
//
// InitTracer installs a global SDK tracer provider; without an exporter spans
// are still created and sampled so that trace IDs appear in logs and response
// headers, but they are not shipped anywhere.
//
// Example usage:
//
//	shutdown := tracing.InitTracer("textdigest-worker", nil)
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.StartSpan(ctx, "digest.run")
//	defer span.End()
package tracing
