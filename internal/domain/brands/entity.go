package brands

import (
	"time"

	"github.com/brandlens/brandlens/internal/domain/visibility"
)

// BrandID identifier type
type BrandID string

// Aggregate Root: Brand — the tracked subject of visibility analysis.
type Brand struct {
	ID              BrandID         `json:"id"`
	TenantID        string          `json:"tenant_id"`
	Name            string          `json:"name"`
	Topic           string          `json:"topic"`
	Plan            visibility.Plan `json:"plan"`
	VisibilityScore int             `json:"visibility_score"`
	LastRun         *time.Time      `json:"last_run,omitempty"`
	RunInProgress   bool            `json:"run_in_progress"`
	CreatedAt       time.Time       `json:"created_at"`
}
