package ai

import "context"

// SearchAnswer is the upstream search-augmented LLM response: free text plus
// whatever citation URLs the engine surfaced.
type SearchAnswer struct {
	Text      string
	Citations []string
}

// SearchClient answers one natural-language query against an AI search
// engine. The response format is the only contract; the engine is a black box.
// Ready reports whether the client can make calls at all (credential
// configured); orchestrators check it before issuing any query.
type SearchClient interface {
	Search(ctx context.Context, query string) (*SearchAnswer, error)
	Engine() string
	Ready() error
}

// ChatUsage reports token consumption of a chat call for the credit ledger.
type ChatUsage struct {
	PromptTokens     int
	CompletionTokens int
}

// ChatClient is the plain LLM used for competitor analysis and the coach.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, *ChatUsage, error)
}
