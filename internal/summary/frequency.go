package summary

import (
	"textdigest/internal/nlp"
)

// FrequencyTable maps a token surface form to its normalized weight in [0, 1].
// The most frequent word has weight exactly 1.0. Stop words and single
// punctuation characters have no entry.
type FrequencyTable map[string]float64

// BuildFrequencyTable counts every token that is neither a stop word nor a
// single punctuation character and normalizes the counts by the maximum count.
//
// Counts are keyed by the original-case surface form unless foldCase is set, in
// which case they are keyed by the lower-cased form. Scoring always looks up the
// lower-cased form, so without folding a word that only ever appears
// capitalized never contributes to a sentence score.
//
// Returns ErrEmptyVocabulary when no token survives filtering.
func BuildFrequencyTable(tokens []nlp.Token, foldCase bool) (FrequencyTable, error) {
	counts := make(map[string]int)
	for _, tok := range tokens {
		if nlp.IsStopWord(tok.Lower) || nlp.IsPunct(tok.Text) {
			continue
		}
		key := tok.Text
		if foldCase {
			key = tok.Lower
		}
		counts[key]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		return nil, ErrEmptyVocabulary
	}

	table := make(FrequencyTable, len(counts))
	for word, c := range counts {
		table[word] = float64(c) / float64(maxCount)
	}
	return table, nil
}

// Weight returns the weight of word and whether the table has an entry for it.
func (t FrequencyTable) Weight(word string) (float64, bool) {
	w, ok := t[word]
	return w, ok
}
