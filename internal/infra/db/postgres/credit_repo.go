package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/brandlens/brandlens/internal/domain/credits"
	"github.com/brandlens/brandlens/internal/domain/visibility"
)

type CreditRepository struct{ db *sql.DB }

func NewCreditRepository(db *sql.DB) *CreditRepository { return &CreditRepository{db: db} }

func (r *CreditRepository) GetPeriod(ctx context.Context, tenant string, periodStart time.Time) (*domain.AllowancePeriod, error) {
	const q = `
SELECT id, tenant_id, plan, period_start, base_tokens, rollover, used_tokens
FROM allowance_periods
WHERE tenant_id=$1 AND period_start=$2 LIMIT 1;`
	return scanPeriod(r.db.QueryRowContext(ctx, q, tenant, periodStart))
}

func (r *CreditRepository) LatestPeriod(ctx context.Context, tenant string) (*domain.AllowancePeriod, error) {
	const q = `
SELECT id, tenant_id, plan, period_start, base_tokens, rollover, used_tokens
FROM allowance_periods
WHERE tenant_id=$1
ORDER BY period_start DESC LIMIT 1;`
	return scanPeriod(r.db.QueryRowContext(ctx, q, tenant))
}

func (r *CreditRepository) SavePeriod(ctx context.Context, p *domain.AllowancePeriod) error {
	const q = `
INSERT INTO allowance_periods
 (tenant_id, plan, period_start, base_tokens, rollover, used_tokens)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (tenant_id, period_start) DO UPDATE SET
 plan = EXCLUDED.plan;`
	_, err := r.db.ExecContext(ctx, q,
		p.TenantID, string(p.Plan), p.PeriodStart, p.BaseTokens, p.Rollover, p.UsedTokens,
	)
	return err
}

// IncrementUsage bumps the used counter in place; never writes an absolute
// total, so concurrent spenders cannot lose updates.
func (r *CreditRepository) IncrementUsage(ctx context.Context, tenant string, periodStart time.Time, tokens int64) error {
	const q = `
UPDATE allowance_periods
SET used_tokens = used_tokens + $1
WHERE tenant_id=$2 AND period_start=$3;`
	_, err := r.db.ExecContext(ctx, q, tokens, tenant, periodStart)
	return err
}

func (r *CreditRepository) AddUsage(ctx context.Context, e *domain.UsageEvent) error {
	const q = `
INSERT INTO usage_events (tenant_id, period_id, source, tokens, created_at)
VALUES ($1,$2,$3,$4,$5);`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, e.TenantID, e.PeriodID, e.Source, e.Tokens, createdAt)
	return err
}

func scanPeriod(row *sql.Row) (*domain.AllowancePeriod, error) {
	var p domain.AllowancePeriod
	var plan string
	if err := row.Scan(
		&p.ID, &p.TenantID, &plan, &p.PeriodStart, &p.BaseTokens, &p.Rollover, &p.UsedTokens,
	); err != nil {
		return nil, err
	}
	p.Plan = visibility.Plan(plan)
	return &p, nil
}
