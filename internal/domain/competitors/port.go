package competitors

import "context"

// Repository port for competitor rows.
type Repository interface {
	ReplaceForRun(ctx context.Context, tenant, runID string, list []*Competitor) error
	ListByRun(ctx context.Context, tenant, runID string) ([]*Competitor, error)
}
