package runs

import "context"

// Repository port for run rows.
type Repository interface {
	Save(ctx context.Context, r *Run) error
	Get(ctx context.Context, tenant string, id RunID) (*Run, error)
	Latest(ctx context.Context, tenant, brandID string, limit int) ([]*Run, error)

	// UpdateProgress bumps queries_completed; called once per batch wave.
	UpdateProgress(ctx context.Context, tenant string, id RunID, completed int) error
}

// ResultRepository port for per-query result rows (append-only).
type ResultRepository interface {
	Save(ctx context.Context, r *Result) error
	ListByRun(ctx context.Context, tenant string, id RunID) ([]*Result, error)
	CountByRun(ctx context.Context, tenant string, id RunID) (int, error)
}

// InsightRepository port. ReplaceForBrand deletes the brand's previous
// insights and inserts the fresh set in one call.
type InsightRepository interface {
	ReplaceForBrand(ctx context.Context, tenant, brandID string, insights []*Insight) error
	ListByBrand(ctx context.Context, tenant, brandID string) ([]*Insight, error)
}

// ReportArchive port for archiving a run's raw results payload to object
// storage; returns the public URL of the stored report.
type ReportArchive interface {
	UploadReport(ctx context.Context, key string, payload []byte) (string, error)
}
