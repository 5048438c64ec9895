package brands

import (
	"context"
	"time"
)

// Repository port for brand persistence.
type Repository interface {
	Save(ctx context.Context, b *Brand) error

	// Get fetches by ID without a tenant filter; ownership is checked by
	// the caller so mismatches can surface as 403 rather than 404.
	Get(ctx context.Context, id BrandID) (*Brand, error)
	ListByTenant(ctx context.Context, tenant string, limit int) ([]*Brand, error)

	// UpdateScore writes the cached score and last_run after a completed run.
	UpdateScore(ctx context.Context, tenant string, id BrandID, score int, lastRun time.Time) error

	// TryLock flips run_in_progress 0->1 atomically; returns false when
	// another run already holds the brand. Unlock always clears the flag.
	TryLock(ctx context.Context, tenant string, id BrandID) (bool, error)
	Unlock(ctx context.Context, tenant string, id BrandID) error
}
