// Package enrich derives summaries, categories, SEO metadata, and
// sentiment for scraped articles using rule-based analyzers.
package enrich

import (
	"context"
	"errors"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/logger"
)

// Enrichment input errors.
var (
	ErrEmptyTitle   = errors.New("article has no title")
	ErrEmptyContent = errors.New("article has no content")
)

// Enricher turns a raw scraped item into a fully enriched article.
type Enricher interface {
	Enrich(ctx context.Context, item domain.RawItem) (*domain.EnrichedArticle, error)
}

// RulesEnricher is the default Enricher. All analysis is local and
// deterministic; no external AI service is involved.
type RulesEnricher struct {
	classifier *Classifier
	logger     logger.Logger
}

// New creates a RulesEnricher.
func New(log logger.Logger) *RulesEnricher {
	return &RulesEnricher{
		classifier: NewClassifier(),
		logger:     log,
	}
}

// Enrich runs every analyzer over the item. Items without a title or
// body are rejected so the caller can record them as stage errors.
func (e *RulesEnricher) Enrich(ctx context.Context, item domain.RawItem) (*domain.EnrichedArticle, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if item.Title == "" {
		return nil, ErrEmptyTitle
	}
	if item.Content == "" {
		return nil, ErrEmptyContent
	}

	item.Normalize()

	summary := Summarize(item.Content)
	classification := e.classifier.Classify(item.Title, item.Content)
	sentiment := AnalyzeSentiment(item.Title + " " + item.Content)

	seoTitle := OptimizeTitle(item.Title)
	seoDescription := MetaDescription(summary, item.Content)
	seoKeywords := ExtractKeywords(item.Title, item.Content)

	article := &domain.EnrichedArticle{
		RawItem:        item,
		Summary:        summary,
		ShortSummary:   ShortSummary(item.Content),
		CategorySlug:   classification.Category,
		ReadingTime:    domain.ReadingTime(item.Content),
		SEOTitle:       seoTitle,
		SEODescription: seoDescription,
		SEOKeywords:    seoKeywords,
		SEOScore:       ScoreSEO(seoTitle, seoDescription, item.Content, seoKeywords),
		SentimentScore: sentiment.Score,
		SentimentLabel: sentiment.Label,
	}

	e.logger.Debug("article enriched",
		logger.String("slug", article.Slug),
		logger.String("category", article.CategorySlug),
		logger.Float64("confidence", classification.Confidence),
	)

	return article, nil
}
