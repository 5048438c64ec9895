package visibility

import "strings"

// Mention is the outcome of checking one response text for a brand.
type Mention struct {
	Mentioned bool
	Position  int // 1-4 bucket, 0 when not mentioned
	Context   string
}

// Matcher locates a brand in a response text. Returns the byte offset of the
// first occurrence, or -1 when absent.
type Matcher interface {
	Match(text, brandName string) int
}

// SubstringMatcher is the reference matcher: case-insensitive substring.
// It deliberately ignores word boundaries and brand variants; stricter
// matchers can be swapped in without touching the scorer or insights.
type SubstringMatcher struct{}

func (SubstringMatcher) Match(text, brandName string) int {
	if brandName == "" {
		return -1
	}
	return strings.Index(strings.ToLower(text), strings.ToLower(brandName))
}

// PositionBucket maps the character offset of the first mention to a coarse
// 1-4 prominence bucket.
func PositionBucket(offset int) int {
	switch {
	case offset < 100:
		return 1
	case offset < 300:
		return 2
	case offset < 600:
		return 3
	default:
		return 4
	}
}

const contextRadius = 50

// DetectMention runs the matcher over a response text and derives the
// position bucket and a context snippet around the first match.
func DetectMention(m Matcher, text, brandName string) Mention {
	offset := m.Match(text, brandName)
	if offset < 0 {
		return Mention{}
	}

	start := offset - contextRadius
	if start < 0 {
		start = 0
	}
	end := offset + len(brandName) + contextRadius
	if end > len(text) {
		end = len(text)
	}

	return Mention{
		Mentioned: true,
		Position:  PositionBucket(offset),
		Context:   text[start:end],
	}
}
