package credits

import (
	"context"
	"errors"
	"time"
)

// ErrNoAllowance indicates the tenant's period balance is exhausted.
var ErrNoAllowance = errors.New("token allowance exhausted")

// Repository port for allowance periods and usage events.
type Repository interface {
	GetPeriod(ctx context.Context, tenant string, periodStart time.Time) (*AllowancePeriod, error)
	LatestPeriod(ctx context.Context, tenant string) (*AllowancePeriod, error)
	SavePeriod(ctx context.Context, p *AllowancePeriod) error

	// IncrementUsage adds tokens to the period's used counter in storage so
	// concurrent spends never overwrite each other.
	IncrementUsage(ctx context.Context, tenant string, periodStart time.Time, tokens int64) error
	AddUsage(ctx context.Context, e *UsageEvent) error
}
