package digest

import (
	"context"
	"errors"
)

// ContentFetcher fetches the readable text of a web article.
// Implementations must refuse private addresses, bound the response size and
// the redirect chain, and honor ctx.
//
// Example usage:
//
//	text, err := fetcher.FetchContent(ctx, "https://example.com/article")
//	if err != nil {
//	    // fall back to the feed item text
//	}
type ContentFetcher interface {
	// FetchContent returns the extracted article text of url.
	//
	// Errors:
	//   - ErrInvalidURL: malformed URL or scheme other than http/https
	//   - ErrPrivateIP: the host resolves to a private address
	//   - ErrTooManyRedirects: redirect chain exceeds the configured maximum
	//   - ErrBodyTooLarge: response exceeds the configured size
	//   - ErrTimeout: request timed out
	//   - ErrReadabilityFailed: no article text could be extracted
	//   - gobreaker.ErrOpenState: too many recent failures
	FetchContent(ctx context.Context, url string) (string, error)
}

// Sentinel errors for content fetching.
var (
	// ErrInvalidURL indicates the URL is malformed or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a loopback, private or
	// link-local address.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrReadabilityFailed indicates no article text could be extracted.
	ErrReadabilityFailed = errors.New("content extraction failed")
)
