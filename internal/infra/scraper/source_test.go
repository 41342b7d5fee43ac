package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textdigest/internal/domain/entity"
	"textdigest/internal/infra/scraper"
)

// mockContentFetcher implements digest.ContentFetcher for testing.
type mockContentFetcher struct {
	mu      sync.Mutex
	content map[string]string
	err     error
	calls   []string
}

func (m *mockContentFetcher) FetchContent(_ context.Context, url string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	if m.err != nil {
		return "", m.err
	}
	return m.content[url], nil
}

func newFeedSource(t *testing.T, enhancement *scraper.Enhancement) *scraper.FeedSource {
	t.Helper()
	server := feedServer(t, rssFeed)
	rss := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})
	return scraper.NewFeedSource("", server.URL, rss, enhancement)
}

func TestFeedSource_Documents(t *testing.T) {
	src := newFeedSource(t, nil)

	assert.Equal(t, entity.SourceKindFeed, src.Kind())
	assert.True(t, strings.HasPrefix(src.Name(), "http://"))

	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "Article 1", docs[0].Title)
	assert.Equal(t, "https://example.com/article1", docs[0].Origin)
	assert.Equal(t, "Description 1", docs[0].Text)
	assert.Equal(t, 2024, docs[0].ReceivedAt.Year())

	// HTML bodies are flattened
	assert.Equal(t, "Full content here.", docs[1].Text)
	assert.False(t, docs[1].ReceivedAt.IsZero())
}

func TestFeedSource_Enhancement(t *testing.T) {
	long := strings.Repeat("Full article sentence. ", 20)

	tests := []struct {
		name      string
		fetcher   *mockContentFetcher
		threshold int
		wantFirst string
		wantCalls int
	}{
		{
			name:      "short items are replaced by longer article text",
			fetcher:   &mockContentFetcher{content: map[string]string{"https://example.com/article1": long}},
			threshold: 100,
			wantFirst: long,
			wantCalls: 2,
		},
		{
			name:      "items at the threshold are kept",
			fetcher:   &mockContentFetcher{content: map[string]string{"https://example.com/article1": long}},
			threshold: 5,
			wantFirst: "Description 1",
			wantCalls: 0,
		},
		{
			name:      "fetch failure falls back to feed text",
			fetcher:   &mockContentFetcher{err: errors.New("blocked")},
			threshold: 100,
			wantFirst: "Description 1",
			wantCalls: 2,
		},
		{
			name:      "shorter article text is ignored",
			fetcher:   &mockContentFetcher{content: map[string]string{"https://example.com/article1": "Tiny"}},
			threshold: 100,
			wantFirst: "Description 1",
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFeedSource(t, &scraper.Enhancement{Fetcher: tt.fetcher, Threshold: tt.threshold, Parallelism: 2})

			docs, err := src.Documents(context.Background())
			require.NoError(t, err)
			require.Len(t, docs, 2)
			assert.Equal(t, tt.wantFirst, docs[0].Text)
			assert.Len(t, tt.fetcher.calls, tt.wantCalls)
		})
	}
}

func TestFeedSource_SkipsItemsWithoutText(t *testing.T) {
	server := feedServer(t, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
<item><title>Empty</title><link>https://example.com/empty</link></item>
<item><title>Full</title><link>https://example.com/full</link><description>Words here.</description></item>
</channel></rss>`)
	src := scraper.NewFeedSource("news", server.URL, scraper.NewRSSFetcher(&http.Client{}), nil)

	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Full", docs[0].Title)
	assert.Equal(t, "news", src.Name())
}
