// Package digest provides the use case that turns configured text sources into
// per-document extractive summaries. Sources are fetched and documents are
// summarized independently with bounded parallelism; the report preserves the
// order in which sources and their documents were given.
package digest

import "errors"

// Sentinel errors for digest use case operations.
var (
	// ErrNoSources indicates that Run was called without any source.
	ErrNoSources = errors.New("no sources configured")

	// ErrSourceFailed indicates that a source could not produce its documents.
	// Individual source failures are reported in Report.Failures and do not
	// abort the run.
	ErrSourceFailed = errors.New("failed to fetch documents from source")

	// ErrAllSourcesFailed indicates that every source of a run failed.
	ErrAllSourcesFailed = errors.New("all sources failed")

	// ErrSummarizationFailed indicates that summarizing a document failed for a
	// reason other than cancellation.
	ErrSummarizationFailed = errors.New("failed to summarize document")
)
