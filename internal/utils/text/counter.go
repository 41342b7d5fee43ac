// Package text provides character counting and truncation for document and
// summary text, measured in Unicode characters rather than bytes.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in text.
//
//	CountRunes("hello")     // 5
//	CountRunes("naïve café") // 10
//	CountRunes("")          // 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate shortens text to at most limit characters. When text is cut, the
// last character is replaced by an ellipsis. A limit below 1 returns "".
func Truncate(text string, limit int) string {
	if limit < 1 {
		return ""
	}
	if CountRunes(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}
