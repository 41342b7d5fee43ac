// Package metrics provides the digest business metrics on the default
// Prometheus registry:
//   - documents fetched per source kind and source errors
//   - digests produced by outcome and digest run duration
//   - article content fetches used to enhance short feed items
//
// Example usage:
//
//	start := time.Now()
//	report, err := service.Run(ctx, sources...)
//	metrics.RecordDigestRun(time.Since(start), err == nil)
package metrics
