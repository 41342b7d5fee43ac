package text_test

import (
	"testing"

	"textdigest/internal/utils/text"
)

/* ───────── Character counting ───────── */

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "ASCII text", input: "hello", expected: 5},
		{name: "ASCII with spaces", input: "hello world", expected: 11},
		{name: "accented", input: "naïve café", expected: 10},
		{name: "CJK", input: "日本語", expected: 3},
		{name: "emoji", input: "Hello👋", expected: 6},
		{name: "empty", input: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := text.CountRunes(tt.input); got != tt.expected {
				t.Errorf("CountRunes(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

/* ───────── Truncation ───────── */

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{name: "fits", input: "short", limit: 10, expected: "short"},
		{name: "exact", input: "exact", limit: 5, expected: "exact"},
		{name: "cut", input: "Cats are great.", limit: 8, expected: "Cats ar…"},
		{name: "multibyte cut", input: "日本語テキスト", limit: 4, expected: "日本語…"},
		{name: "limit one", input: "abc", limit: 1, expected: "…"},
		{name: "zero limit", input: "abc", limit: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := text.Truncate(tt.input, tt.limit); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.expected)
			}
		})
	}
}
