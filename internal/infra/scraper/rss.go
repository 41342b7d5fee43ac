// Package scraper lists the items of RSS/Atom feeds and of feedless web pages
// and turns them into documents, optionally replacing short item bodies with
// the full article text.
package scraper

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"textdigest/internal/resilience/circuitbreaker"
	"textdigest/internal/resilience/retry"
)

// FeedItem is one entry of a feed or of a scraped page.
type FeedItem struct {
	Title       string
	URL         string
	Content     string
	PublishedAt time.Time
}

// RSSFetcher parses RSS and Atom feeds with gofeed. All feeds share one
// circuit breaker.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// WithRetryConfig replaces the retry policy.
func (f *RSSFetcher) WithRetryConfig(cfg retry.Config) *RSSFetcher {
	f.retryConfig = cfg
	return f
}

// Fetch downloads and parses the feed at feedURL. Items keep feed order.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]FeedItem, error) {
	return guarded(ctx, f.circuitBreaker, f.retryConfig, feedURL, func() ([]FeedItem, error) {
		return f.parse(ctx, feedURL)
	})
}

func (f *RSSFetcher) parse(ctx context.Context, feedURL string) ([]FeedItem, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = f.client

	slog.Debug("Fetching feed", slog.String("url", feedURL))
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	var status gofeed.HTTPError
	switch {
	case errors.As(err, &status):
		return nil, &retry.HTTPError{StatusCode: status.StatusCode, Message: status.Status}
	case err != nil:
		return nil, err
	}

	items := make([]FeedItem, len(feed.Items))
	for i, it := range feed.Items {
		items[i] = toFeedItem(it)
	}
	return items, nil
}

// toFeedItem prefers the full content over the description and the
// publication date over the update date.
func toFeedItem(it *gofeed.Item) FeedItem {
	item := FeedItem{
		Title:   it.Title,
		URL:     it.Link,
		Content: cmp.Or(it.Content, it.Description),
	}
	if date := cmp.Or(it.PublishedParsed, it.UpdatedParsed); date != nil {
		item.PublishedAt = *date
	}
	return item
}
