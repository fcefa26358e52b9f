package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/content-engine/internal/domain"
)

// boilerplatePhrases are feed-injected call-to-action fragments removed
// from article text.
var boilerplatePhrases = []string{
	"Click here to read more",
	"Continue reading",
	"Read the full article",
	"Subscribe to our newsletter",
}

// CleanHTML strips markup from raw feed content and collapses
// whitespace. Unparseable input falls back to the raw text.
func CleanHTML(raw string) string {
	if raw == "" {
		return ""
	}

	text := raw
	doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if parseErr == nil {
		text = doc.Text()
	}

	for _, phrase := range boilerplatePhrases {
		text = strings.ReplaceAll(text, phrase, "")
	}

	return domain.CollapseWhitespace(text)
}

// wordCount returns the number of whitespace-separated words.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
