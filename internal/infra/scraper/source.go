package scraper

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"textdigest/internal/domain/entity"
	"textdigest/internal/infra/htmltext"
	"textdigest/internal/observability/metrics"
	"textdigest/internal/usecase/digest"
	"textdigest/internal/utils/text"
)

// Enhancement configures replacement of short feed item bodies by the text of
// the linked article.
type Enhancement struct {
	Fetcher digest.ContentFetcher

	// Threshold is the item text length, in characters, at or above which the
	// article is not fetched.
	Threshold int

	// Parallelism bounds concurrent article downloads.
	Parallelism int
}

// FeedSource is a digest.TextSource producing one document per feed item, or
// per article listed on a scraped page.
type FeedSource struct {
	name        string
	url         string
	kind        entity.SourceKind
	list        func(ctx context.Context) ([]FeedItem, error)
	enhancement *Enhancement
}

var _ digest.TextSource = (*FeedSource)(nil)

// NewFeedSource creates a source for the feed at feedURL. An empty name
// defaults to feedURL. enhancement may be nil.
func NewFeedSource(name, feedURL string, rss *RSSFetcher, enhancement *Enhancement) *FeedSource {
	return newItemSource(name, feedURL, entity.SourceKindFeed, enhancement,
		func(ctx context.Context) ([]FeedItem, error) {
			return rss.Fetch(ctx, feedURL)
		})
}

// NewPageSource creates a source for the articles listed at pageURL. Listed
// items carry no body, so every article is fetched through enhancement; with
// a nil enhancement the source yields no documents.
func NewPageSource(name, pageURL string, scraper *PageScraper, sel entity.PageSelectors, enhancement *Enhancement) *FeedSource {
	return newItemSource(name, pageURL, entity.SourceKindPage, enhancement,
		func(ctx context.Context) ([]FeedItem, error) {
			return scraper.Fetch(ctx, pageURL, sel)
		})
}

func newItemSource(name, location string, kind entity.SourceKind, enhancement *Enhancement,
	list func(ctx context.Context) ([]FeedItem, error)) *FeedSource {
	if name == "" {
		name = location
	}
	if enhancement != nil && enhancement.Fetcher == nil {
		enhancement = nil
	}
	return &FeedSource{name: name, url: location, kind: kind, list: list, enhancement: enhancement}
}

// Name implements digest.TextSource.
func (s *FeedSource) Name() string { return s.name }

// Kind implements digest.TextSource.
func (s *FeedSource) Kind() entity.SourceKind { return s.kind }

// Documents implements digest.TextSource. Items without any text are skipped.
func (s *FeedSource) Documents(ctx context.Context) ([]entity.Document, error) {
	items, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(items))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.parallelism())
	for i, item := range items {
		eg.Go(func() error {
			texts[i] = s.itemText(egCtx, item)
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs := make([]entity.Document, 0, len(items))
	for i, item := range items {
		if texts[i] == "" {
			slog.Debug("skipping feed item without text",
				slog.String("feed", s.name),
				slog.String("url", item.URL))
			continue
		}
		received := item.PublishedAt
		if received.IsZero() {
			received = time.Now()
		}
		origin := item.URL
		if origin == "" {
			origin = s.url
		}
		docs = append(docs, entity.Document{
			Title:      item.Title,
			Origin:     origin,
			Text:       texts[i],
			ReceivedAt: received,
		})
	}
	return docs, nil
}

func (s *FeedSource) parallelism() int {
	if s.enhancement == nil || s.enhancement.Parallelism < 1 {
		return 1
	}
	return s.enhancement.Parallelism
}

// itemText returns the plain text of item, enhanced when the feed body is short.
func (s *FeedSource) itemText(ctx context.Context, item FeedItem) string {
	body := item.Content
	if htmltext.LooksLikeHTML(body) {
		body = htmltext.ToText(body)
	}
	return s.enhance(ctx, item.URL, body)
}

// enhance fetches the article behind url when body is shorter than the
// threshold. The fetched text is used only when it is longer than body.
func (s *FeedSource) enhance(ctx context.Context, url, body string) string {
	if s.enhancement == nil || url == "" {
		return body
	}
	logger := slog.Default()

	length := text.CountRunes(body)
	if length >= s.enhancement.Threshold {
		logger.Debug("feed content sufficient, skipping fetch",
			slog.String("url", url),
			slog.Int("feed_length", length),
			slog.Int("threshold", s.enhancement.Threshold))
		metrics.RecordContentFetchSkipped()
		return body
	}

	start := time.Now()
	full, err := s.enhancement.Fetcher.FetchContent(ctx, url)
	if err != nil {
		logger.Warn("content fetch failed, using feed content",
			slog.String("url", url),
			slog.Any("error", err),
			slog.Duration("fetch_duration", time.Since(start)))
		return body
	}

	fetched := text.CountRunes(full)
	if fetched > length {
		logger.Debug("using fetched article content",
			slog.String("url", url),
			slog.Int("feed_length", length),
			slog.Int("fetched_length", fetched))
		return full
	}
	return body
}
