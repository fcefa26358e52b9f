package enrich

import (
	"sort"
	"strings"

	"github.com/jonesrussell/content-engine/internal/domain"
)

// Summary sizing constants.
const (
	summarySentences  = 3
	shortSummaryWords = 80
	minSummaryInput   = 20
)

// Summarize produces an extractive summary: sentences are scored by the
// frequency of their significant words across the article, and the top
// sentences are emitted in original order.
func Summarize(content string) string {
	content = domain.CollapseWhitespace(content)
	if len(content) < minSummaryInput {
		return ""
	}

	sentences := domain.SplitSentences(content)
	if len(sentences) <= summarySentences {
		return joinSentences(sentences)
	}

	freq := wordFrequencies(content)

	type scored struct {
		index int
		score float64
	}

	ranked := make([]scored, 0, len(sentences))
	for i, sentence := range sentences {
		words := significantWords(sentence)
		if len(words) == 0 {
			continue
		}
		total := 0
		for _, w := range words {
			total += freq[w]
		}
		ranked = append(ranked, scored{index: i, score: float64(total) / float64(len(words))})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > summarySentences {
		ranked = ranked[:summarySentences]
	}

	// Emit selected sentences in article order.
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].index < ranked[j].index })

	picked := make([]string, 0, len(ranked))
	for _, r := range ranked {
		picked = append(picked, sentences[r.index])
	}

	return joinSentences(picked)
}

// ShortSummary returns a quick-read cut of the article, capped at
// shortSummaryWords words.
func ShortSummary(content string) string {
	content = domain.CollapseWhitespace(content)
	if len(content) < minSummaryInput {
		return ""
	}

	words := strings.Fields(content)
	if len(words) <= shortSummaryWords {
		return content
	}

	return strings.Join(words[:shortSummaryWords], " ") + "..."
}

// joinSentences restores terminal punctuation stripped by the splitter.
func joinSentences(sentences []string) string {
	parts := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
			s += "."
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// wordFrequencies counts significant word occurrences across the text.
func wordFrequencies(text string) map[string]int {
	freq := make(map[string]int)
	for _, w := range significantWords(text) {
		freq[w]++
	}
	return freq
}

// significantWords returns lowercased words longer than three
// characters that are not stop words.
func significantWords(text string) []string {
	fields := strings.Fields(normalizeText(text))
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}
