package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textdigest/internal/infra/scraper"
	"textdigest/internal/resilience/retry"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Article 1</title>
      <link>https://example.com/article1</link>
      <description>Description 1</description>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Article 2</title>
      <link>https://example.com/article2</link>
      <description>Short description</description>
      <content:encoded><![CDATA[<p>Full content here.</p>]]></content:encoded>
    </item>
  </channel>
</rss>`

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestRSSFetcher_Fetch_Success(t *testing.T) {
	server := feedServer(t, rssFeed)
	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

	items, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Article 1", items[0].Title)
	assert.Equal(t, "https://example.com/article1", items[0].URL)
	assert.Equal(t, "Description 1", items[0].Content)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), items[0].PublishedAt.UTC())

	// content:encoded wins over the description
	assert.Equal(t, "<p>Full content here.</p>", items[1].Content)
	assert.True(t, items[1].PublishedAt.IsZero())
}

func TestRSSFetcher_Fetch_Atom(t *testing.T) {
	server := feedServer(t, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2024-01-01T00:00:00Z</updated>
  <entry>
    <title>Atom Article 1</title>
    <link href="https://example.com/atom1"/>
    <id>atom1</id>
    <updated>2024-01-02T00:00:00Z</updated>
    <summary>Atom Summary 1</summary>
  </entry>
</feed>`)
	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

	items, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Atom Article 1", items[0].Title)
	assert.Equal(t, "Atom Summary 1", items[0].Content)
	assert.Equal(t, 2, items[0].PublishedAt.Day())
}

func TestRSSFetcher_Fetch_EmptyFeed(t *testing.T) {
	server := feedServer(t, `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`)
	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

	items, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRSSFetcher_Fetch_InvalidXML(t *testing.T) {
	server := feedServer(t, "Invalid XML <><><>")
	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second}).WithRetryConfig(fastRetry())

	_, err := fetcher.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestRSSFetcher_Fetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second}).WithRetryConfig(fastRetry())

	items, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRSSFetcher_Fetch_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second}).WithRetryConfig(fastRetry())

	_, err := fetcher.Fetch(context.Background(), server.URL)
	var httpErr *retry.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRSSFetcher_Fetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scraper.NewRSSFetcher(&http.Client{}).Fetch(ctx, server.URL)
	assert.Error(t, err)
}
