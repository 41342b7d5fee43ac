// Package nlp provides the English text analysis used by the summarizer:
// punkt sentence segmentation, word tokenization and the stop-word list.
package nlp

import (
	"fmt"
	"strings"
	"sync"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// Sentence is an ordered sequence of tokens as segmented by the sentence model.
type Sentence struct {
	// Index is the position of the sentence in its document, starting at 0.
	Index int `json:"index"`

	// Text is the literal sentence span with surrounding whitespace trimmed.
	Text string `json:"text"`

	Tokens []Token `json:"tokens"`
}

// Document is the analyzed form of a text.
type Document struct {
	Text      string     `json:"-"`
	Sentences []Sentence `json:"sentences"`
}

// Tokens returns the flat token sequence of the document in reading order.
func (d Document) Tokens() []Token {
	n := 0
	for _, s := range d.Sentences {
		n += len(s.Tokens)
	}
	tokens := make([]Token, 0, n)
	for _, s := range d.Sentences {
		tokens = append(tokens, s.Tokens...)
	}
	return tokens
}

type sentenceSplitter interface {
	Tokenize(text string) []*sentences.Sentence
}

// Model holds the trained punkt parameters. It is read-only after Load and
// safe for concurrent use.
type Model struct {
	splitter sentenceSplitter
}

// Load builds a new Model from the embedded English punkt training data.
// Loading decodes the training set and is comparatively expensive; most
// callers should use Default.
func Load() (*Model, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load english sentence model: %w", err)
	}
	return &Model{splitter: tokenizer}, nil
}

var (
	defaultModel *Model
	defaultErr   error
	defaultOnce  sync.Once
)

// Default returns the process-wide Model, loading it on first use.
func Default() (*Model, error) {
	defaultOnce.Do(func() {
		defaultModel, defaultErr = Load()
	})
	return defaultModel, defaultErr
}

// Parse segments text into sentences and tokenizes every sentence.
// Sentences that are empty after trimming are dropped.
func (m *Model) Parse(text string) Document {
	doc := Document{Text: text}
	for _, s := range m.splitter.Tokenize(text) {
		span := strings.TrimSpace(s.Text)
		if span == "" {
			continue
		}
		doc.Sentences = append(doc.Sentences, Sentence{
			Index:  len(doc.Sentences),
			Text:   span,
			Tokens: Tokenize(span),
		})
	}
	return doc
}
