package visibility

import "fmt"

// InsightInput carries the per-query fields the insight templates read.
type InsightInput struct {
	Query     string
	Mentioned bool
	Position  int
	Citation  string
}

// GenerateInsights turns run statistics into the ordered recommendation list
// shown on the dashboard. Fully deterministic: fixed templates, no randomness.
func GenerateInsights(results []InsightInput, topic, brandName string, score int) []string {
	total := len(results)
	mentions := 0
	topPosition := false
	cited := 0
	firstMiss := ""
	for _, r := range results {
		if r.Mentioned {
			mentions++
			if r.Position <= 2 {
				topPosition = true
			}
			if r.Citation != "" {
				cited++
			}
		} else if firstMiss == "" {
			firstMiss = r.Query
		}
	}

	var insights []string

	rate := 0
	if total > 0 {
		rate = mentions * 100 / total
	}
	insights = append(insights, fmt.Sprintf(
		"%s was mentioned in %d of %d AI search responses about %s (%d%% mention rate).",
		brandName, mentions, total, topic, rate))

	if topPosition {
		insights = append(insights, fmt.Sprintf(
			"Great news: %s appears near the top of at least one AI answer. Keep publishing the content that earned that placement.",
			brandName))
	} else {
		insights = append(insights, fmt.Sprintf(
			"%s never appears early in AI answers. Strengthen authoritative content so models rank you higher when summarizing %s.",
			brandName, topic))
	}

	if firstMiss != "" {
		insights = append(insights, fmt.Sprintf(
			"Content gap: AI answers for %q do not mention %s. Publish content targeting that question.",
			firstMiss, brandName))
	}

	switch {
	case score < 40:
		insights = append(insights, fmt.Sprintf(
			"Your visibility score is %d. Focus on foundational %s content and brand presence to get on AI radars.",
			score, topic))
	case score < 70:
		insights = append(insights, fmt.Sprintf(
			"Your visibility score is %d. You have traction; double down on the queries where %s already shows up.",
			score, brandName))
	default:
		insights = append(insights, fmt.Sprintf(
			"Your visibility score is %d. %s is a leading voice for %s; defend the position with fresh content.",
			score, brandName, topic))
	}

	if mentions > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d of %d mentions carried a citation link. Citations drive referral traffic, so make linkable sources easy to find.",
			cited, mentions))
	}

	return insights
}
