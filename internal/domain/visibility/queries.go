package visibility

import "fmt"

// Query templates expanded for every run. %s is the topic; templates that take
// two arguments interpolate topic then brand. The order is fixed so results
// can be indexed reproducibly across runs.
var topicTemplates = [...]string{
	"best %s services",
	"top %s companies",
	"%s recommendations",
	"who are the leading %s providers",
	"affordable %s options",
	"%s reviews and comparisons",
	"how to choose a %s provider",
	"most trusted %s brands",
	"%s alternatives",
	"%s for small businesses",
	"what is the best %s solution",
	"%s pricing comparison",
	"enterprise %s solutions",
	"%s experts near me",
	"up and coming %s startups",
}

var brandTemplates = [...]string{
	"is %s good for %s",
	"%s vs competitors for %s",
	"%s %s review",
	"should I use %s for %s",
	"what do people say about %s for %s",
}

// QueryCount is the fixed number of queries generated per run.
const QueryCount = len(topicTemplates) + len(brandTemplates)

// GenerateQueries expands the topic/brand pair into the fixed ordered query
// set. Pure and deterministic; no I/O.
func GenerateQueries(topic, brandName string) []string {
	queries := make([]string, 0, QueryCount)
	for _, t := range topicTemplates {
		queries = append(queries, fmt.Sprintf(t, topic))
	}
	for _, t := range brandTemplates {
		queries = append(queries, fmt.Sprintf(t, brandName, topic))
	}
	return queries
}
