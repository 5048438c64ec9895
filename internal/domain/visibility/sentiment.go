package visibility

import "strings"

var positiveWords = []string{
	"best", "great", "excellent", "leading", "top", "recommended", "trusted",
	"reliable", "popular", "innovative",
}

var negativeWords = []string{
	"worst", "bad", "poor", "avoid", "expensive", "unreliable", "complaint",
	"scam", "disappointing",
}

// DetectSentiment tags the tone of a mention context with a small lexicon
// scan. Coarse on purpose; dashboards only bucket into three values.
func DetectSentiment(context string) string {
	lower := strings.ToLower(context)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return "positive"
	case neg > pos:
		return "negative"
	default:
		return "neutral"
	}
}
