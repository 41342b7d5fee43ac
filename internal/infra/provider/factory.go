// Package provider builds digest sources from their configuration.
package provider

import (
	"fmt"
	"io"
	"net/http"

	"textdigest/internal/domain/entity"
	"textdigest/internal/infra/fetcher"
	"textdigest/internal/infra/mailbox"
	"textdigest/internal/infra/scraper"
	"textdigest/internal/infra/textfile"
	"textdigest/internal/usecase/digest"
)

// Factory creates digest.TextSource instances sharing one feed fetcher and one
// article fetcher, so their circuit breakers see every request of a run.
type Factory struct {
	rss         *scraper.RSSFetcher
	pages       *scraper.PageScraper
	articles    *fetcher.ReadabilityFetcher
	enhancement *scraper.Enhancement
	pageFetch   *scraper.Enhancement
	stdin       io.Reader
}

// NewFactory creates a Factory. Feed items shorter than fetchConfig.Threshold
// are replaced by their article text unless fetchConfig.Enabled is false.
// Articles listed by page sources are always fetched.
func NewFactory(client *http.Client, fetchConfig fetcher.ContentFetchConfig) *Factory {
	f := &Factory{
		rss:      scraper.NewRSSFetcher(client),
		pages:    scraper.NewPageScraper(client),
		articles: fetcher.NewReadabilityFetcher(fetchConfig),
	}
	f.pageFetch = &scraper.Enhancement{
		Fetcher:     f.articles,
		Threshold:   1,
		Parallelism: max(fetchConfig.Parallelism, 1),
	}
	if fetchConfig.Enabled {
		f.enhancement = &scraper.Enhancement{
			Fetcher:     f.articles,
			Threshold:   fetchConfig.Threshold,
			Parallelism: fetchConfig.Parallelism,
		}
	}
	return f
}

// WithStdin replaces standard input for file sources located at "-".
func (f *Factory) WithStdin(r io.Reader) *Factory {
	f.stdin = r
	return f
}

// Build returns the source described by src. src is validated first; a
// non-zero Ratio is attached with digest.WithRatio.
func (f *Factory) Build(src entity.Source) (digest.TextSource, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	var ts digest.TextSource
	switch src.Kind {
	case entity.SourceKindURL:
		ts = fetcher.NewURLSource(src.Name, src.Location, f.articles)
	case entity.SourceKindFeed:
		ts = scraper.NewFeedSource(src.Name, src.Location, f.rss, f.enhancement)
	case entity.SourceKindPage:
		ts = scraper.NewPageSource(src.Name, src.Location, f.pages, *src.Selectors, f.pageFetch)
	case entity.SourceKindMailbox:
		ts = mailbox.NewSource(src.Name, src.Location, src.Window)
	case entity.SourceKindFile:
		if src.Location == textfile.Stdin && f.stdin != nil {
			ts = textfile.NewReaderSource(src.Name, f.stdin)
		} else {
			ts = textfile.NewSource(src.Name, src.Location)
		}
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind)
	}

	if src.Ratio != 0 {
		ts = digest.WithRatio(ts, src.Ratio)
	}
	return ts, nil
}

// BuildAll builds every source, stopping at the first invalid one.
func (f *Factory) BuildAll(sources []entity.Source) ([]digest.TextSource, error) {
	built := make([]digest.TextSource, 0, len(sources))
	for i, src := range sources {
		ts, err := f.Build(src)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		built = append(built, ts)
	}
	return built, nil
}
