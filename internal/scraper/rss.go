package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/httpclient"
	"github.com/jonesrussell/content-engine/internal/logger"
)

// RSS adapter defaults.
const (
	defaultMaxPerFeed  = 10
	defaultMaxAgeDays  = 7
	defaultMinWords    = 50
	rssRequestTimeout  = 30 * time.Second
	rssSourceName      = "rss"
	hoursPerDay        = 24
)

// DefaultFeedSources is the built-in feed list used when the
// configuration provides none.
var DefaultFeedSources = []FeedSource{
	{Name: "BBC News", URL: "http://feeds.bbci.co.uk/news/rss.xml"},
	{Name: "CNN", URL: "http://rss.cnn.com/rss/edition.rss"},
	{Name: "TechCrunch", URL: "https://feeds.feedburner.com/TechCrunch"},
	{Name: "The Guardian", URL: "https://www.theguardian.com/world/rss"},
	{Name: "NPR", URL: "https://feeds.npr.org/1001/rss.xml"},
	{Name: "Ars Technica", URL: "http://feeds.arstechnica.com/arstechnica/index"},
	{Name: "Wired", URL: "https://www.wired.com/feed/rss"},
	{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
}

// RSSSource fetches articles from a configurable list of RSS feeds.
type RSSSource struct {
	sources    []FeedSource
	parser     *gofeed.Parser
	maxAge     time.Duration
	minWords   int
	maxPerFeed int
	logger     logger.Logger
}

// RSSOption customizes an RSSSource.
type RSSOption func(*RSSSource)

// WithMaxAge overrides the freshness window.
func WithMaxAge(maxAge time.Duration) RSSOption {
	return func(s *RSSSource) { s.maxAge = maxAge }
}

// WithMinWords overrides the minimum word count filter.
func WithMinWords(minWords int) RSSOption {
	return func(s *RSSSource) { s.minWords = minWords }
}

// WithMaxPerFeed overrides the per-feed item cap.
func WithMaxPerFeed(maxPerFeed int) RSSOption {
	return func(s *RSSSource) { s.maxPerFeed = maxPerFeed }
}

// NewRSSSource creates an RSS adapter over the given feeds. An empty
// feed list falls back to DefaultFeedSources.
func NewRSSSource(sources []FeedSource, log logger.Logger, opts ...RSSOption) *RSSSource {
	if len(sources) == 0 {
		sources = DefaultFeedSources
	}

	parser := gofeed.NewParser()
	parser.Client = httpclient.New(&httpclient.Config{Timeout: rssRequestTimeout})

	s := &RSSSource{
		sources:    sources,
		parser:     parser,
		maxAge:     defaultMaxAgeDays * hoursPerDay * time.Hour,
		minWords:   defaultMinWords,
		maxPerFeed: defaultMaxPerFeed,
		logger:     log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name identifies the adapter.
func (s *RSSSource) Name() string {
	return rssSourceName
}

// Fetch pulls items from every configured feed. A single feed failure
// is logged and skipped; Fetch fails only when every feed fails.
func (s *RSSSource) Fetch(ctx context.Context, limit int) ([]domain.RawItem, error) {
	maxPerFeed := limit
	if maxPerFeed <= 0 {
		maxPerFeed = s.maxPerFeed
	}

	items := make([]domain.RawItem, 0, maxPerFeed*len(s.sources))
	failed := 0

	for _, src := range s.sources {
		fetchCtx, cancel := context.WithTimeout(ctx, rssRequestTimeout)
		feed, parseErr := s.parser.ParseURLWithContext(src.URL, fetchCtx)
		cancel()

		if parseErr != nil {
			failed++
			s.logger.Warn("RSS feed fetch failed",
				logger.String("feed", src.Name),
				logger.Error(parseErr),
			)
			continue
		}

		items = append(items, s.collectFeedItems(src, feed, maxPerFeed)...)
	}

	if failed == len(s.sources) {
		return nil, fmt.Errorf("all %d RSS feeds failed", failed)
	}

	s.logger.Info("RSS fetch complete",
		logger.Int("items", len(items)),
		logger.Int("feeds_failed", failed),
	)

	return items, nil
}

// collectFeedItems converts one parsed feed into raw items, applying
// the freshness and minimum word count filters.
func (s *RSSSource) collectFeedItems(src FeedSource, feed *gofeed.Feed, maxPerFeed int) []domain.RawItem {
	cutoff := time.Now().Add(-s.maxAge)
	items := make([]domain.RawItem, 0, maxPerFeed)

	for _, entry := range feed.Items {
		if len(items) >= maxPerFeed {
			break
		}
		if entry == nil || entry.Title == "" {
			continue
		}
		if entry.PublishedParsed != nil && entry.PublishedParsed.Before(cutoff) {
			continue
		}

		content := CleanHTML(entry.Content)
		if content == "" {
			content = CleanHTML(entry.Description)
		}
		if wordCount(content) < s.minWords {
			continue
		}

		item := domain.RawItem{
			Title:      domain.CollapseWhitespace(entry.Title),
			Content:    content,
			SourceURL:  entry.Link,
			SourceName: src.Name,
			SourceType: domain.SourceRSS,
			ImageURL:   feedImage(entry),
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = entry.PublishedParsed.UTC()
		}
		if len(entry.Authors) > 0 && entry.Authors[0] != nil {
			item.Author = entry.Authors[0].Name
		}
		item.Normalize()

		items = append(items, item)
	}

	return items
}

// feedImage extracts an image URL from the entry's image block or its
// enclosures.
func feedImage(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}
