package prompt

import "fmt"

// CompetitorSystemPrompt pins the model to a strict JSON contract.
func CompetitorSystemPrompt() string {
	return `You are a brand visibility analyst. You must produce one valid JSON array only (no markdown, no commentary, no code fences).

Requirements:
- Output must be a single JSON array of 3 to 5 objects.
- Each object has exactly these keys: "name" (string, the competitor brand), "score" (integer 0-100, its estimated AI-search visibility), "gap" (string, one sentence on what it does better).
- Identify competitors from the brands actually named in the excerpts, not from general knowledge.

Schema (example with empty values):
[
  {"name": "<string>", "score": 0, "gap": "<string>"}
]`
}

// CompetitorUserPrompt wraps the run's summarized results.
func CompetitorUserPrompt(summary string) string {
	return fmt.Sprintf("Here are AI search responses collected for a brand analysis run. Identify the 3-5 strongest competitors per the schema.\n\n%s", summary)
}
