package runs

import (
	"time"
)

// RunID identifier type (UUID minted per orchestration).
type RunID string

// Status enum for a run's lifecycle. Exactly one terminal transition:
// processing -> completed or processing -> failed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Aggregate Root: AnalysisRun — one execution of the pipeline for a brand.
type Run struct {
	ID               RunID     `json:"id"`
	BrandID          string    `json:"brand_id"`
	TenantID         string    `json:"tenant_id"`
	Status           Status    `json:"status"`
	QueriesCompleted int       `json:"queries_completed"`
	TotalQueries     int       `json:"total_queries"`
	VisibilityScore  int       `json:"visibility_score"`
	TotalMentions    int       `json:"total_mentions"`
	AvgPosition      float64   `json:"avg_position"`
	MentionRate      float64   `json:"mention_rate"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	ReportURL        string    `json:"report_url,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// Result is one per-query record ("analyses" row). Append-only: written once
// by the batch runner, never mutated.
type Result struct {
	ID        int64     `json:"id"`
	RunID     RunID     `json:"run_id"`
	TenantID  string    `json:"tenant_id"`
	Query     string    `json:"query"`
	Engine    string    `json:"engine"`
	Mentioned bool      `json:"mentioned"`
	Position  *int      `json:"position,omitempty"` // 1-4 bucket, nil when not mentioned
	Context   string    `json:"context,omitempty"`  // ±50 chars around the mention
	Excerpt   string    `json:"excerpt,omitempty"`  // full response text, for post-hoc analysis
	Citation  string    `json:"citation,omitempty"`
	Sentiment string    `json:"sentiment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Insight is a templated recommendation tied to a brand and the run that
// produced it. Insights for a brand are replaced on each successful run.
type Insight struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	BrandID   string    `json:"brand_id"`
	RunID     RunID     `json:"run_id"`
	Text      string    `json:"text"`
	Ordinal   int       `json:"ordinal"`
	CreatedAt time.Time `json:"created_at"`
}
