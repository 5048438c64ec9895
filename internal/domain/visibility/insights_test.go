package visibility

import (
	"strings"
	"testing"
)

func insightInputs(mentioned, total int, bucket int) []InsightInput {
	out := make([]InsightInput, total)
	for i := range out {
		out[i].Query = "query " + string(rune('a'+i))
		if i < mentioned {
			out[i].Mentioned = true
			out[i].Position = bucket
		}
	}
	return out
}

func TestGenerateInsightsMentionRateLine(t *testing.T) {
	got := GenerateInsights(insightInputs(6, 20, 2), "plumbing", "PipeCo", 27)
	if len(got) == 0 {
		t.Fatal("no insights generated")
	}
	first := got[0]
	if !strings.Contains(first, "6 of 20") || !strings.Contains(first, "30% mention rate") {
		t.Errorf("rate line = %q", first)
	}
	if !strings.Contains(first, "PipeCo") || !strings.Contains(first, "plumbing") {
		t.Errorf("rate line missing brand or topic: %q", first)
	}
}

func TestGenerateInsightsPositionCallout(t *testing.T) {
	early := GenerateInsights(insightInputs(3, 20, 2), "plumbing", "PipeCo", 20)
	if !containsSubstring(early, "near the top") {
		t.Error("expected top-position callout for bucket 2 mentions")
	}

	late := GenerateInsights(insightInputs(3, 20, 4), "plumbing", "PipeCo", 20)
	if !containsSubstring(late, "never appears early") {
		t.Error("expected late-position nudge for bucket 4 mentions")
	}
}

func TestGenerateInsightsContentGap(t *testing.T) {
	in := insightInputs(6, 20, 2)
	got := GenerateInsights(in, "plumbing", "PipeCo", 27)
	if !containsSubstring(got, "Content gap") {
		t.Error("expected content gap insight when a query missed")
	}
	// The first unmentioned query is the one called out.
	if !containsSubstring(got, in[6].Query) {
		t.Errorf("expected gap insight to quote %q", in[6].Query)
	}

	full := GenerateInsights(insightInputs(20, 20, 1), "plumbing", "PipeCo", 100)
	if containsSubstring(full, "Content gap") {
		t.Error("no gap insight expected when every query mentioned the brand")
	}
}

func TestGenerateInsightsScoreTiers(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{10, "foundational"},
		{39, "foundational"},
		{40, "double down"},
		{69, "double down"},
		{70, "leading voice"},
		{100, "leading voice"},
	}
	for _, tt := range tests {
		got := GenerateInsights(insightInputs(5, 20, 2), "plumbing", "PipeCo", tt.score)
		if !containsSubstring(got, tt.want) {
			t.Errorf("score %d: expected an insight containing %q", tt.score, tt.want)
		}
	}
}

func TestGenerateInsightsCitationLine(t *testing.T) {
	in := insightInputs(4, 20, 1)
	in[0].Citation = "https://example.com/post"
	got := GenerateInsights(in, "plumbing", "PipeCo", 30)
	if !containsSubstring(got, "1 of 4 mentions carried a citation") {
		t.Error("expected citation summary line")
	}

	none := GenerateInsights(insightInputs(0, 20, 0), "plumbing", "PipeCo", 0)
	if containsSubstring(none, "citation") {
		t.Error("no citation line expected without mentions")
	}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
