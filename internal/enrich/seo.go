package enrich

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonesrussell/content-engine/internal/domain"
)

// SEO sizing and scoring constants.
const (
	idealTitleMin = 50
	idealTitleMax = 60
	idealMetaMin  = 150
	idealMetaMax  = 160

	maxKeywords = 10

	seoBaseScore      = 100.0
	titlePenalty      = 15.0
	metaPenalty       = 15.0
	thinBodyPenalty   = 20.0
	fewKeywordPenalty = 10.0
	thinBodyWords     = 100
	minKeywordCount   = 3
)

// OptimizeTitle fits a title into the ideal length window, cutting at a
// word boundary when the original is too long.
func OptimizeTitle(title string) string {
	title = domain.CollapseWhitespace(title)
	if utf8.RuneCountInString(title) <= idealTitleMax {
		return title
	}
	return truncateAtWord(title, idealTitleMax)
}

// MetaDescription builds a meta description from the summary, falling
// back to the content, fitted to the ideal window.
func MetaDescription(summary, content string) string {
	source := domain.CollapseWhitespace(summary)
	if source == "" {
		source = domain.CollapseWhitespace(content)
	}
	if utf8.RuneCountInString(source) <= idealMetaMax {
		return source
	}
	return truncateAtWord(source, idealMetaMin) + "..."
}

// ExtractKeywords returns the most frequent significant words, title
// words weighted double. Ties break alphabetically so the output is
// stable.
func ExtractKeywords(title, content string) []string {
	freq := wordFrequencies(title + " " + title + " " + content)
	if len(freq) == 0 {
		return nil
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > maxKeywords {
		words = words[:maxKeywords]
	}
	return words
}

// ScoreSEO grades the optimized fields from 0 to 100.
func ScoreSEO(title, meta, content string, keywords []string) float64 {
	score := seoBaseScore

	titleLen := utf8.RuneCountInString(title)
	if titleLen < idealTitleMin || titleLen > idealTitleMax {
		score -= titlePenalty
	}

	metaLen := utf8.RuneCountInString(meta)
	if metaLen < idealMetaMin || metaLen > idealMetaMax+3 {
		score -= metaPenalty
	}

	if len(strings.Fields(content)) < thinBodyWords {
		score -= thinBodyPenalty
	}

	if len(keywords) < minKeywordCount {
		score -= fewKeywordPenalty
	}

	if score < 0 {
		score = 0
	}
	return score
}

// truncateAtWord cuts text to at most maxRunes, preferring the last
// word boundary before the cut.
func truncateAtWord(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	cut := string(runes[:maxRunes])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:-")
}
