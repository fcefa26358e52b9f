package enrich

// categoryKeywords maps each category slug to the keyword list that
// votes for it during classification.
var categoryKeywords = map[string][]string{
	"technology": {
		"tech", "ai", "artificial intelligence", "software", "hardware",
		"computer", "digital", "internet", "cyber", "startup", "innovation",
		"machine learning", "blockchain", "cloud", "saas", "app",
	},
	"politics": {
		"government", "election", "vote", "president", "congress", "senate",
		"policy", "law", "politics", "political", "democrat", "republican",
		"legislation", "parliament", "supreme court",
	},
	"business": {
		"business", "economy", "financial", "market", "stock", "investment",
		"company", "corporate", "profit", "revenue", "economic", "gdp",
		"trade", "merger", "acquisition", "ipo",
	},
	"sports": {
		"sport", "game", "team", "player", "match", "tournament",
		"championship", "football", "basketball", "baseball", "soccer",
		"cricket", "tennis", "olympic", "nfl", "nba",
	},
	"health": {
		"health", "medical", "doctor", "hospital", "medicine", "disease",
		"treatment", "healthcare", "patient", "virus", "vaccine", "mental health",
		"fitness", "nutrition", "wellness",
	},
	"science": {
		"science", "research", "study", "discovery", "scientist",
		"experiment", "scientific", "laboratory", "analysis", "data",
		"physics", "biology", "chemistry", "space", "nasa",
	},
	"entertainment": {
		"movie", "film", "music", "celebrity", "entertainment", "actor",
		"actress", "show", "concert", "album", "award", "streaming",
		"netflix", "disney", "hollywood", "tv series",
	},
	"world": {
		"international", "global", "world", "country", "nation", "foreign",
		"embassy", "diplomatic", "war", "conflict", "united nations",
		"refugee", "humanitarian",
	},
	"environment": {
		"climate", "environment", "green", "renewable", "pollution",
		"carbon", "emissions", "sustainability", "nature", "conservation",
		"solar", "wind energy", "deforestation", "ocean",
	},
	"education": {
		"education", "school", "university", "student", "teacher",
		"learning", "academic", "college", "curriculum", "degree",
		"scholarship", "campus",
	},
	"lifestyle": {
		"lifestyle", "travel", "food", "fashion", "beauty", "home",
		"design", "recipe", "cooking", "vacation", "wellness", "culture",
	},
	"automotive": {
		"car", "vehicle", "electric vehicle", "ev", "tesla", "automotive",
		"driving", "motor", "suv", "truck", "hybrid", "self-driving",
	},
}

// stopWords are excluded from keyword extraction and summary scoring.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "he": {}, "in": {},
	"is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "that": {},
	"the": {}, "to": {}, "was": {}, "will": {}, "with": {}, "but": {},
	"or": {}, "not": {}, "this": {}, "they": {}, "have": {}, "had": {},
	"what": {}, "said": {}, "each": {}, "which": {}, "their": {},
	"time": {}, "into": {}, "only": {}, "so": {}, "his": {}, "her": {},
	"like": {}, "can": {}, "could": {}, "would": {}, "she": {},
	"about": {}, "over": {},
}

// positiveWords and negativeWords are the sentiment lexicons.
var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "wonderful": {},
	"positive": {}, "growth": {}, "gain": {}, "profit": {}, "success": {},
	"improve": {}, "benefit": {}, "optimistic": {}, "breakthrough": {},
	"achievement": {}, "progress": {}, "innovation": {}, "hope": {},
	"support": {}, "win": {}, "strong": {}, "boost": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "negative": {}, "loss": {},
	"crisis": {}, "fail": {}, "decline": {}, "drop": {}, "crash": {},
	"threat": {}, "risk": {}, "damage": {}, "destroy": {}, "conflict": {},
	"war": {}, "death": {}, "recession": {}, "collapse": {}, "scandal": {},
	"fraud": {}, "corruption": {}, "disaster": {}, "attack": {}, "violence": {},
}
