package metrics

import (
	"time"
)

// RecordSourceFetched records a successful source fetch.
func RecordSourceFetched(kind string, documents int, duration time.Duration) {
	SourceFetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if documents > 0 {
		DocumentsFetchedTotal.WithLabelValues(kind).Add(float64(documents))
	}
}

// RecordSourceError records a failed source fetch.
func RecordSourceError(kind, errorType string) {
	SourceErrorsTotal.WithLabelValues(kind, errorType).Inc()
}

// RecordDigest records the outcome of one document digest.
func RecordDigest(status string) {
	DigestsTotal.WithLabelValues(status).Inc()
}

// RecordDigestRun records a finished digest run.
func RecordDigestRun(duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	DigestRunsTotal.WithLabelValues(status).Inc()
	DigestRunDuration.Observe(duration.Seconds())
	LastDigestRunTimestamp.SetToCurrentTime()
}

// RecordContentFetchSuccess records a successful article content fetch.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed article content fetch.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a feed item whose own content was long enough.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}
