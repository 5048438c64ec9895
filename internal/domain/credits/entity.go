package credits

import (
	"time"

	"github.com/brandlens/brandlens/internal/domain/visibility"
)

// AllowancePeriod is one calendar month of token budget for a tenant.
// Unused tokens roll into the next period, capped at one month's base
// allocation.
type AllowancePeriod struct {
	ID          int64           `json:"id"`
	TenantID    string          `json:"tenant_id"`
	Plan        visibility.Plan `json:"plan"`
	PeriodStart time.Time       `json:"period_start"` // first of the month, UTC
	BaseTokens  int64           `json:"base_tokens"`
	Rollover    int64           `json:"rollover"`
	UsedTokens  int64           `json:"used_tokens"`
}

// Remaining is the spendable balance of the period.
func (p *AllowancePeriod) Remaining() int64 {
	return p.BaseTokens + p.Rollover - p.UsedTokens
}

// UsageEvent logs one token spend against a period.
type UsageEvent struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	PeriodID  int64     `json:"period_id"`
	Source    string    `json:"source"` // e.g. "coach"
	Tokens    int64     `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
}

// RolloverInto computes the carry-over granted by this period to the next:
// the unused balance, floored at zero and capped at one month's base.
func (p *AllowancePeriod) RolloverInto() int64 {
	unused := p.Remaining()
	if unused <= 0 {
		return 0
	}
	if unused > p.BaseTokens {
		return p.BaseTokens
	}
	return unused
}
