package fetcher

import (
	"context"
	"time"

	"textdigest/internal/domain/entity"
	"textdigest/internal/usecase/digest"
)

// URLSource is a digest.TextSource producing one document from a web article.
type URLSource struct {
	name    string
	url     string
	fetcher *ReadabilityFetcher
	now     func() time.Time
}

var _ digest.TextSource = (*URLSource)(nil)

// NewURLSource creates a source for rawURL. An empty name defaults to rawURL.
func NewURLSource(name, rawURL string, fetcher *ReadabilityFetcher) *URLSource {
	if name == "" {
		name = rawURL
	}
	return &URLSource{name: name, url: rawURL, fetcher: fetcher, now: time.Now}
}

// Name implements digest.TextSource.
func (s *URLSource) Name() string { return s.name }

// Kind implements digest.TextSource.
func (s *URLSource) Kind() entity.SourceKind { return entity.SourceKindURL }

// Documents implements digest.TextSource.
func (s *URLSource) Documents(ctx context.Context) ([]entity.Document, error) {
	article, err := s.fetcher.FetchArticle(ctx, s.url)
	if err != nil {
		return nil, err
	}
	title := article.Title
	if title == "" {
		title = s.url
	}
	return []entity.Document{{
		Title:      title,
		Origin:     article.URL,
		Text:       article.Text,
		ReceivedAt: s.now(),
	}}, nil
}
