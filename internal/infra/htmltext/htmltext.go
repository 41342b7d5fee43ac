// Package htmltext flattens HTML fragments, such as feed item bodies and HTML
// mail parts, into plain text suitable for sentence segmentation.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements that end a line of text.
const blockSelector = "p, div, br, li, h1, h2, h3, h4, h5, h6, blockquote, pre, tr, article, section, header, footer"

// ToText returns the visible text of fragment. Block elements are separated by
// newlines, runs of spaces are collapsed and blank lines are dropped. Script,
// style and noscript contents are removed.
//
// Input that fails to parse is returned unchanged.
func ToText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	doc.Find("script, style, noscript, template").Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	return normalize(doc.Text())
}

// LooksLikeHTML reports whether s contains markup worth flattening.
func LooksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	if i < 0 || i+1 >= len(s) {
		return false
	}
	next := s[i+1]
	return next == '/' || next == '!' || (next|0x20 >= 'a' && next|0x20 <= 'z')
}

// normalize collapses horizontal whitespace within lines and drops blank lines.
func normalize(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
