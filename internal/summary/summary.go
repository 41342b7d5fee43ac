// Package summary implements extractive summarization by word frequency.
//
// Sentences are scored by the summed normalized frequency of their words and
// the highest-scoring sentences are returned in descending score order. The
// number of sentences kept is the source sentence count multiplied by the
// requested ratio, truncated toward zero.
//
// Example usage:
//
//	text, err := summary.Summarize(article, 0.1)
package summary

import (
	"errors"
	"math"
	"sort"
	"strings"

	"textdigest/internal/nlp"
)

// ErrEmptyVocabulary indicates that no token survived stop-word and punctuation
// filtering, so no word weight can be computed.
var ErrEmptyVocabulary = errors.New("no scoring words after stop-word and punctuation filtering")

// Options tunes the scoring.
type Options struct {
	// FoldCase counts words by their lower-cased form instead of their
	// original form. Default false keeps case-sensitive counting.
	FoldCase bool
}

// ScoredSentence is a sentence selected for the summary.
type ScoredSentence struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// ScoreTable maps a sentence index to its score. Sentences without any
// scoring word have no entry.
type ScoreTable map[int]float64

// Summary is the result of Extract.
type Summary struct {
	// Sentences are ordered by descending score; equal scores keep document order.
	Sentences []ScoredSentence `json:"sentences"`

	// Total is the number of sentences in the source document.
	Total int `json:"total_sentences"`

	// Scored is the number of sentences that received a score.
	Scored int `json:"scored_sentences"`

	// Requested is floor(Total * ratio), clamped at zero.
	Requested int `json:"requested_sentences"`
}

// String joins the selected sentence texts with a single space.
func (s Summary) String() string {
	parts := make([]string, len(s.Sentences))
	for i, sent := range s.Sentences {
		parts[i] = sent.Text
	}
	return strings.Join(parts, " ")
}

// Summarize returns the extractive summary of text at the given ratio using the
// process-wide language model. Input without any scoring word yields an empty
// summary. The only error is a failure to load the language model.
func Summarize(text string, ratio float64) (string, error) {
	model, err := nlp.Default()
	if err != nil {
		return "", err
	}
	s, err := Extract(model.Parse(text), ratio, Options{})
	if errors.Is(err, ErrEmptyVocabulary) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

// Extract scores the sentences of doc and selects the top sentences for ratio.
// It returns ErrEmptyVocabulary when doc has no scoring word.
func Extract(doc nlp.Document, ratio float64, opts Options) (Summary, error) {
	result := Summary{
		Total:     len(doc.Sentences),
		Requested: SelectLength(len(doc.Sentences), ratio),
	}

	table, err := BuildFrequencyTable(doc.Tokens(), opts.FoldCase)
	if err != nil {
		return result, err
	}

	scores := ScoreSentences(doc.Sentences, table)
	result.Scored = len(scores)

	candidates := make([]ScoredSentence, 0, len(scores))
	for _, sent := range doc.Sentences {
		score, ok := scores[sent.Index]
		if !ok {
			continue
		}
		candidates = append(candidates, ScoredSentence{Index: sent.Index, Text: sent.Text, Score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if result.Requested < len(candidates) {
		candidates = candidates[:result.Requested]
	}
	result.Sentences = candidates
	return result, nil
}

// ScoreSentences sums, for every sentence, the weights of the tokens whose
// lower-cased form has an entry in table.
func ScoreSentences(sentences []nlp.Sentence, table FrequencyTable) ScoreTable {
	scores := make(ScoreTable)
	for _, sent := range sentences {
		for _, tok := range sent.Tokens {
			w, ok := table.Weight(tok.Lower)
			if !ok {
				continue
			}
			scores[sent.Index] += w
		}
	}
	return scores
}

// SelectLength returns floor(total * ratio), or 0 when the product is not positive.
func SelectLength(total int, ratio float64) int {
	if math.IsNaN(ratio) || ratio <= 0 || total <= 0 {
		return 0
	}
	n := float64(total) * ratio
	if n >= float64(total) {
		return total
	}
	return int(n)
}
