package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"textdigest/internal/domain/entity"
	"textdigest/internal/resilience/circuitbreaker"
	"textdigest/internal/resilience/retry"
)

const (
	maxPageSize       = 10 << 20
	defaultDateFormat = "Jan 2, 2006"
)

// ErrNoItems is returned when the item selector matches no usable article.
var ErrNoItems = errors.New("no items found on page")

// PageScraper lists the articles of a web page that has no feed, using CSS
// selectors, through a circuit breaker and with retries on transient failures.
type PageScraper struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewPageScraper creates a PageScraper with the given HTTP client.
func NewPageScraper(client *http.Client) *PageScraper {
	return &PageScraper{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.DefaultConfig("page-scraper")),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// WithRetryConfig replaces the retry policy.
func (p *PageScraper) WithRetryConfig(cfg retry.Config) *PageScraper {
	p.retryConfig = cfg
	return p
}

// Fetch downloads pageURL and returns one item per element matching
// sel.Item, in page order. Items have no Content.
func (p *PageScraper) Fetch(ctx context.Context, pageURL string, sel entity.PageSelectors) ([]FeedItem, error) {
	return guarded(ctx, p.circuitBreaker, p.retryConfig, pageURL, func() ([]FeedItem, error) {
		return p.doFetch(ctx, pageURL, sel)
	})
}

func (p *PageScraper) doFetch(ctx context.Context, pageURL string, sel entity.PageSelectors) ([]FeedItem, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL: %w", err)
	}

	doc, err := p.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	items := extractItems(doc, base, sel)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: selector %q", ErrNoItems, sel.Item)
	}
	return items, nil
}

func (p *PageScraper) fetchHTML(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	slog.Debug("Fetching page", slog.String("url", pageURL))
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// extractItems skips elements without a title or a link. Relative links are
// resolved against base.
func extractItems(doc *goquery.Document, base *url.URL, sel entity.PageSelectors) []FeedItem {
	var items []FeedItem
	doc.Find(sel.Item).Each(func(i int, el *goquery.Selection) {
		title := strings.TrimSpace(el.Find(sel.Title).First().Text())
		if title == "" {
			slog.Debug("skipping page item without title", slog.Int("index", i))
			return
		}

		href, _ := el.Find(sel.Link).First().Attr("href")
		link, err := base.Parse(strings.TrimSpace(href))
		if href == "" || err != nil {
			slog.Debug("skipping page item without link",
				slog.Int("index", i),
				slog.String("title", title))
			return
		}

		var published time.Time
		if sel.Date != "" {
			published = parseDate(strings.TrimSpace(el.Find(sel.Date).First().Text()), sel.DateFormat)
		}

		items = append(items, FeedItem{
			Title:       title,
			URL:         link.String(),
			PublishedAt: published,
		})
	})
	return items
}

// parseDate parses s with layout, then with a few common layouts. It returns
// the zero time when nothing matches.
func parseDate(s, layout string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if layout == "" {
		layout = defaultDateFormat
	}
	for _, l := range []string{layout, time.RFC3339, "2006-01-02", "January 2, 2006", defaultDateFormat} {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	slog.Debug("unparsed page item date", slog.String("date", s), slog.String("format", layout))
	return time.Time{}
}
