package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// SourceType identifies which kind of adapter produced an item.
type SourceType string

const (
	// SourceRSS marks items fetched from RSS feeds.
	SourceRSS SourceType = "rss"
	// SourceNewsAPI marks items fetched from the NewsAPI service.
	SourceNewsAPI SourceType = "newsapi"
	// SourceTradingView marks market quotes scraped from TradingView.
	SourceTradingView SourceType = "tradingview"
)

// RawItem is the unified output of any source adapter.
type RawItem struct {
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	SourceURL   string         `json:"source_url"`
	SourceName  string         `json:"source_name"`
	SourceType  SourceType     `json:"source_type"`
	Slug        string         `json:"slug"`
	Excerpt     string         `json:"excerpt"`
	Author      string         `json:"author"`
	PublishedAt time.Time      `json:"published_at,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	Images      []string       `json:"images,omitempty"`
	Metadata    map[string]any `json:"meta_data,omitempty"`
}

// excerptLen is the maximum length of an auto-generated excerpt.
const excerptLen = 200

// Normalize fills the derived Slug and Excerpt fields when the adapter
// did not provide them.
func (i *RawItem) Normalize() {
	if i.Slug == "" {
		i.Slug = GenerateSlug(i.Title)
	}
	if i.Excerpt == "" {
		if utf8.RuneCountInString(i.Content) > excerptLen {
			i.Excerpt = string([]rune(i.Content)[:excerptLen]) + "..."
		} else {
			i.Excerpt = i.Content
		}
	}
	if i.Author == "" {
		i.Author = "Unknown"
	}
}

// EnrichedArticle is a RawItem plus all derived enrichment fields.
type EnrichedArticle struct {
	RawItem

	Summary        string   `json:"summary"`
	ShortSummary   string   `json:"short_content"`
	CategorySlug   string   `json:"category_slug"`
	ReadingTime    int      `json:"reading_time"`
	SEOTitle       string   `json:"seo_title"`
	SEODescription string   `json:"seo_description"`
	SEOKeywords    []string `json:"seo_keywords"`
	SEOScore       float64  `json:"seo_score"`
	SentimentScore float64  `json:"sentiment_score"`
	SentimentLabel string   `json:"sentiment_label"`
}

// MarketQuote is one scraped market index quote.
type MarketQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Last          float64 `json:"last"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	High          float64 `json:"high,omitempty"`
	Low           float64 `json:"low,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Exchange      string  `json:"exchange,omitempty"`
	Country       string  `json:"country,omitempty"`
	Source        string  `json:"source"`
}

// ContentHash returns the SHA-256 hex digest of the lowercased, trimmed
// title. Deduplication keys on this value alone: near-duplicate bodies
// under different titles are not caught, and identical titles over
// different stories collide. That recall/accuracy tradeoff is accepted.
func ContentHash(title string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	h := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(h[:])
}

// slugMaxLen is the maximum length of the text portion of a slug.
const slugMaxLen = 100

// slugHashLen is the number of hash characters appended for uniqueness.
const slugHashLen = 8

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9\s]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+\s`)
	wordsPerMinute = 200
)

// GenerateSlug produces a URL-friendly slug with a uniqueness suffix
// derived from the title hash.
func GenerateSlug(title string) string {
	slug := slugStripRe.ReplaceAllString(strings.ToLower(title), "")
	slug = slugSpaceRe.ReplaceAllString(strings.TrimSpace(slug), "-")
	if len(slug) > slugMaxLen {
		slug = slug[:slugMaxLen]
		slug = strings.TrimSuffix(slug, "-")
	}
	return slug + "-" + ContentHash(title)[:slugHashLen]
}

// CollapseWhitespace trims the text and collapses runs of whitespace to
// single spaces.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// SplitSentences splits text on sentence-ending punctuation.
func SplitSentences(text string) []string {
	parts := sentenceEndRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// ReadingTime estimates reading time in whole minutes, minimum 1.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// titleTruncateLen is the length item titles are cut to in error messages.
const titleTruncateLen = 40

// TruncateTitle shortens a title for use as an item identifier in stage
// error entries.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= titleTruncateLen {
		return title
	}
	return string(runes[:titleTruncateLen])
}
