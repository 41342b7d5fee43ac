package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"textdigest/internal/observability/metrics"
	"textdigest/internal/resilience/circuitbreaker"
	"textdigest/internal/resilience/retry"
	"textdigest/internal/usecase/digest"
)

// UserAgent identifies textdigest to the sites it downloads from.
const UserAgent = "TextDigestBot/1.0"

// Article is the readable part of a web page.
type Article struct {
	Title string
	Text  string
	URL   string
}

// ReadabilityFetcher implements digest.ContentFetcher with the Mozilla
// Readability algorithm (go-shiori/go-readability).
//
// Every request target, redirects included, is checked against private
// addresses when DenyPrivateIPs is set. Requests run through a circuit breaker
// and the body is read up to MaxBodySize.
//
// ReadabilityFetcher is safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         ContentFetchConfig
}

var _ digest.ContentFetcher = (*ReadabilityFetcher)(nil)

// NewReadabilityFetcher creates a new ReadabilityFetcher with the given configuration.
//
// Example:
//
//	fetcher := NewReadabilityFetcher(DefaultConfig())
//	article, err := fetcher.FetchArticle(ctx, "https://example.com/article")
func NewReadabilityFetcher(config ContentFetchConfig) *ReadabilityFetcher {
	fetcher := &ReadabilityFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ArticleFetchConfig()),
		retryConfig:    retry.ArticleFetchConfig(),
		config:         config,
	}

	fetcher.client = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= fetcher.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", digest.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), fetcher.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return fetcher
}

// WithRetryConfig replaces the retry policy for transient failures.
func (f *ReadabilityFetcher) WithRetryConfig(cfg retry.Config) *ReadabilityFetcher {
	f.retryConfig = cfg
	return f
}

// FetchContent implements digest.ContentFetcher.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	article, err := f.FetchArticle(ctx, urlStr)
	if err != nil {
		return "", err
	}
	return article.Text, nil
}

// FetchArticle downloads urlStr and extracts its title and readable text.
// Errors are those listed on digest.ContentFetcher.
func (f *ReadabilityFetcher) FetchArticle(ctx context.Context, urlStr string) (Article, error) {
	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		return Article{}, err
	}

	start := time.Now()
	var article Article
	err := retry.WithBackoff(ctx, f.retryConfig, func() error {
		var fetchErr error
		article, fetchErr = circuitbreaker.Do(f.circuitBreaker, func() (Article, error) {
			return f.doFetch(ctx, urlStr)
		})
		return fetchErr
	})
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return Article{}, err
	}
	metrics.RecordContentFetchSuccess(time.Since(start), len(article.Text))
	return article, nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (Article, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return Article{}, fmt.Errorf("%w: failed to create request: %v", digest.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	slog.Debug("Downloading content from URL", slog.String("url", urlStr))
	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return Article{}, fmt.Errorf("%w: request exceeded %v", digest.ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return Article{}, urlErr.Err
		}
		return Article{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Article{}, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return Article{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return Article{}, fmt.Errorf("%w: response size exceeds limit %d bytes",
			digest.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	// Relative links resolve against the final URL after redirects.
	pageURL, _ := url.Parse(urlStr)
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	parsed, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return Article{}, fmt.Errorf("%w: %v", digest.ErrReadabilityFailed, err)
	}

	text := strings.TrimSpace(parsed.TextContent)
	if text == "" {
		return Article{}, fmt.Errorf("%w: no readable content found", digest.ErrReadabilityFailed)
	}

	finalURL := urlStr
	if pageURL != nil {
		finalURL = pageURL.String()
	}
	return Article{Title: strings.TrimSpace(parsed.Title), Text: text, URL: finalURL}, nil
}
