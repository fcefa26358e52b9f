package enrich

import (
	"regexp"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Classification scoring constants.
const (
	fallbackCategory   = "general"
	fallbackConfidence = 0.1
	maxConfidence      = 0.95
	maxMatchedKeywords = 5
)

var nonWordRe = regexp.MustCompile(`[^a-z0-9\s-]`)

// Classification is the outcome of classifying one article.
type Classification struct {
	Category   string
	Confidence float64
	Keywords   []string
}

// Classifier assigns a category to an article using an Aho-Corasick
// automaton over the category keyword lists. The automaton prefilters
// candidate keywords in one pass; whole-word occurrence counts then
// score each category.
type Classifier struct {
	matcher      *ahocorasick.Matcher
	keywords     []string
	kwToCategory map[string][]string
}

// NewClassifier builds the keyword automaton.
func NewClassifier() *Classifier {
	c := &Classifier{
		kwToCategory: make(map[string][]string),
	}

	// Sorted category order keeps the automaton deterministic.
	categories := make([]string, 0, len(categoryKeywords))
	for cat := range categoryKeywords {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		for _, kw := range categoryKeywords[cat] {
			normalized := strings.ToLower(strings.TrimSpace(kw))
			if normalized == "" {
				continue
			}
			if _, seen := c.kwToCategory[normalized]; !seen {
				c.keywords = append(c.keywords, normalized)
			}
			c.kwToCategory[normalized] = append(c.kwToCategory[normalized], cat)
		}
	}

	c.matcher = ahocorasick.NewStringMatcher(c.keywords)

	return c
}

// Classify returns the best-matching category for the article. The
// title is weighted double. Articles matching no keyword fall back to
// the general category with low confidence.
func (c *Classifier) Classify(title, content string) Classification {
	text := normalizeText(title + " " + title + " " + content)
	padded := " " + text + " "

	hits := c.matcher.Match([]byte(text))

	scores := make(map[string]int)
	matched := make(map[string][]string)

	for _, hitIndex := range hits {
		if hitIndex >= len(c.keywords) {
			continue
		}
		keyword := c.keywords[hitIndex]

		// The automaton matches substrings; only whole-word
		// occurrences count.
		count := strings.Count(padded, " "+keyword+" ")
		if count == 0 {
			continue
		}

		weight := count * len(strings.Fields(keyword))
		for _, cat := range c.kwToCategory[keyword] {
			scores[cat] += weight
			matched[cat] = append(matched[cat], keyword)
		}
	}

	if len(scores) == 0 {
		return Classification{Category: fallbackCategory, Confidence: fallbackConfidence}
	}

	best, total := "", 0
	for cat, score := range scores {
		total += score
		if best == "" || score > scores[best] || (score == scores[best] && cat < best) {
			best = cat
		}
	}

	confidence := float64(scores[best]) / float64(total)
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	keywords := matched[best]
	sort.Strings(keywords)
	if len(keywords) > maxMatchedKeywords {
		keywords = keywords[:maxMatchedKeywords]
	}

	return Classification{Category: best, Confidence: confidence, Keywords: keywords}
}

// normalizeText lowercases and replaces punctuation with spaces so the
// automaton sees clean word boundaries.
func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}
