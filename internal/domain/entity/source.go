package entity

import (
	"fmt"
	"time"
)

// SourceKind names the provider that turns a Source into Documents.
type SourceKind string

const (
	// SourceKindURL fetches a single web article.
	SourceKindURL SourceKind = "url"
	// SourceKindFeed reads every item of an RSS or Atom feed.
	SourceKindFeed SourceKind = "feed"
	// SourceKindPage scrapes the article list of a web page without a feed.
	SourceKindPage SourceKind = "page"
	// SourceKindMailbox reads recent messages from an mbox file.
	SourceKindMailbox SourceKind = "mailbox"
	// SourceKindFile reads a local file, or standard input for "-".
	SourceKindFile SourceKind = "file"
)

// Source describes one configured input of a digest run.
type Source struct {
	Name     string     `yaml:"name" json:"name"`
	Kind     SourceKind `yaml:"kind" json:"kind"`
	Location string     `yaml:"location" json:"location"`

	// Window limits mailbox sources to messages received within this duration.
	// Zero means the provider default.
	Window time.Duration `yaml:"window,omitempty" json:"window,omitempty"`

	// Ratio overrides the digest ratio for this source. Zero means the default.
	Ratio float64 `yaml:"ratio,omitempty" json:"ratio,omitempty"`

	// Selectors locate the articles of a page source.
	Selectors *PageSelectors `yaml:"selectors,omitempty" json:"selectors,omitempty"`
}

// PageSelectors are the CSS selectors used to find articles on a listing page.
// Title, Link and Date are evaluated inside each Item element.
type PageSelectors struct {
	Item  string `yaml:"item" json:"item"`
	Title string `yaml:"title" json:"title"`
	Link  string `yaml:"link" json:"link"`
	Date  string `yaml:"date,omitempty" json:"date,omitempty"`

	// DateFormat is a Go time layout for the Date text. Default: "Jan 2, 2006".
	DateFormat string `yaml:"date_format,omitempty" json:"date_format,omitempty"`
}

// Validate checks that the mandatory selectors are set.
func (p *PageSelectors) Validate() error {
	if p == nil {
		return &ValidationError{Field: "selectors", Message: "selectors are required for page sources"}
	}
	switch {
	case p.Item == "":
		return &ValidationError{Field: "selectors.item", Message: "item selector is required"}
	case p.Title == "":
		return &ValidationError{Field: "selectors.title", Message: "title selector is required"}
	case p.Link == "":
		return &ValidationError{Field: "selectors.link", Message: "link selector is required"}
	}
	return nil
}

// Validate checks that the source kind is known and the location is usable for it.
// An empty Name defaults to the Location.
func (s *Source) Validate() error {
	if s.Name == "" {
		s.Name = s.Location
	}

	switch s.Kind {
	case SourceKindURL, SourceKindFeed:
		if err := ValidateURL(s.Location); err != nil {
			return fmt.Errorf("source %q: %w", s.Name, err)
		}
	case SourceKindPage:
		if err := ValidateURL(s.Location); err != nil {
			return fmt.Errorf("source %q: %w", s.Name, err)
		}
		if err := s.Selectors.Validate(); err != nil {
			return fmt.Errorf("source %q: %w", s.Name, err)
		}
	case SourceKindMailbox, SourceKindFile:
		if s.Location == "" {
			return &ValidationError{Field: "location", Message: "location is required"}
		}
	default:
		return &ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("invalid source kind %q (must be url, feed, page, mailbox, or file)", s.Kind),
		}
	}

	if s.Window < 0 {
		return &ValidationError{Field: "window", Message: "window must not be negative"}
	}
	if s.Ratio != 0 {
		if err := ValidateRatio(s.Ratio); err != nil {
			return err
		}
	}
	return nil
}
