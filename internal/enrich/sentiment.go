package enrich

import "strings"

// Sentiment labels and thresholds.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"

	sentimentThreshold = 0.15
	minSentimentInput  = 10
)

// Sentiment is a lexicon-based polarity result.
type Sentiment struct {
	Score float64
	Label string
}

// AnalyzeSentiment scores text polarity on [-1, 1] by counting lexicon
// hits. Text with no lexicon words is neutral.
func AnalyzeSentiment(text string) Sentiment {
	if len(strings.TrimSpace(text)) < minSentimentInput {
		return Sentiment{Label: SentimentNeutral}
	}

	positives, negatives := 0, 0
	for _, w := range strings.Fields(normalizeText(text)) {
		if _, ok := positiveWords[w]; ok {
			positives++
		}
		if _, ok := negativeWords[w]; ok {
			negatives++
		}
	}

	total := positives + negatives
	if total == 0 {
		return Sentiment{Label: SentimentNeutral}
	}

	score := float64(positives-negatives) / float64(total)

	label := SentimentNeutral
	switch {
	case score > sentimentThreshold:
		label = SentimentPositive
	case score < -sentimentThreshold:
		label = SentimentNegative
	}

	return Sentiment{Score: score, Label: label}
}
