package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brandlens/brandlens/internal/application"
	domain "github.com/brandlens/brandlens/internal/domain/credits"
	"github.com/brandlens/brandlens/internal/domain/visibility"
)

// Service maintains the monthly token allowance ledger. The analysis run
// path does not consume from it; only usage-logging callers (the coach) do.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock

	FreeMonthlyTokens int64
	ProMonthlyTokens  int64
}

func (s *Service) baseTokens(plan visibility.Plan) int64 {
	if plan == visibility.PlanPro {
		return s.ProMonthlyTokens
	}
	return s.FreeMonthlyTokens
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Ensure returns the tenant's current allowance period, creating it if the
// month has rolled over. Rollover carries the previous period's unused
// balance, capped at one month's base allocation.
func (s *Service) Ensure(ctx context.Context, tenant string, plan visibility.Plan) (*domain.AllowancePeriod, error) {
	start := monthStart(s.Clock.Now())

	period, err := s.Repo.GetPeriod(ctx, tenant, start)
	if err == nil {
		return period, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	rollover := int64(0)
	prev, err := s.Repo.LatestPeriod(ctx, tenant)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if prev != nil && prev.PeriodStart.Before(start) {
		rollover = prev.RolloverInto()
	}

	period = &domain.AllowancePeriod{
		TenantID:    tenant,
		Plan:        plan,
		PeriodStart: start,
		BaseTokens:  s.baseTokens(plan),
		Rollover:    rollover,
	}
	if err := s.Repo.SavePeriod(ctx, period); err != nil {
		return nil, err
	}
	return s.Repo.GetPeriod(ctx, tenant, start)
}

// LogUsage records a token spend against the current period. Callers that
// must enforce the budget check the returned period's Remaining first; a
// spend against an exhausted period returns domain.ErrNoAllowance.
func (s *Service) LogUsage(ctx context.Context, tenant string, plan visibility.Plan, source string, tokens int64) (*domain.AllowancePeriod, error) {
	if tokens < 0 {
		return nil, fmt.Errorf("usage tokens must be non-negative")
	}
	period, err := s.Ensure(ctx, tenant, plan)
	if err != nil {
		return nil, err
	}
	if period.Remaining() <= 0 {
		return nil, domain.ErrNoAllowance
	}

	event := &domain.UsageEvent{
		TenantID:  tenant,
		PeriodID:  period.ID,
		Source:    source,
		Tokens:    tokens,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repo.AddUsage(ctx, event); err != nil {
		return nil, err
	}

	// Delta update in storage; a read-modify-write here would let two
	// concurrent spends overwrite each other.
	if err := s.Repo.IncrementUsage(ctx, tenant, period.PeriodStart, tokens); err != nil {
		return nil, err
	}
	return s.Repo.GetPeriod(ctx, tenant, period.PeriodStart)
}
