// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Document, Digest and Source, along
// with their validation rules and domain-specific errors.
package entity

import "time"

// Document is a body of text handed to the summarizer together with where it came from.
// Documents are immutable once produced by a source.
type Document struct {
	// Title is a human-readable label: article title, mail subject or file name.
	Title string `json:"title,omitempty"`

	// Origin identifies where the text came from: a URL, a mailbox path or a file path.
	Origin string `json:"origin"`

	// Text is the plain text to summarize.
	Text string `json:"-"`

	// ReceivedAt is the publication or delivery time when known.
	ReceivedAt time.Time `json:"received_at,omitzero"`
}

// Digest is the summary of a single Document.
type Digest struct {
	Document Document `json:"document"`

	// Summary is the rendered summary text. Empty when no sentence qualified.
	Summary string `json:"summary"`

	// TotalSentences is the number of sentences in the source text.
	TotalSentences int `json:"total_sentences"`

	// SelectedSentences is the number of sentences in Summary.
	SelectedSentences int `json:"selected_sentences"`

	// Ratio is the compression ratio the summary was generated with.
	Ratio float64 `json:"ratio"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Empty reports whether the digest carries no summary text.
func (d Digest) Empty() bool {
	return d.Summary == ""
}
