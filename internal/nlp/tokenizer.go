package nlp

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// Token is a word unit produced by the tokenizer.
type Token struct {
	// Text is the surface form as returned by the word tokenizer.
	Text string `json:"text"`

	// Lower is the lower-cased surface form used for stop-word checks and lookups.
	Lower string `json:"lower"`
}

// Tokenize splits text into word tokens with prose's English tokenizer.
//
// Whitespace separates candidate words; leading and trailing punctuation or
// symbols become tokens of their own, English clitics are split from their stem,
// and abbreviations such as "U.S." as well as inner hyphens are kept.
//
// Example:
//
//	Tokenize("Don't panic, he said.")
//	// [Do n't panic , he said .]
func Tokenize(text string) []Token {
	// Segmentation, tagging and extraction are what can fail; tokenization alone
	// never returns an error.
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil
	}

	words := doc.Tokens()
	if len(words) == 0 {
		return nil
	}
	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, Token{Text: w.Text, Lower: strings.ToLower(w.Text)})
	}
	return tokens
}
