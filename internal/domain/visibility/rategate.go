package visibility

import "time"

// Plan is the subscription tier driving run frequency and token allowances.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Minimum interval between runs per plan.
const (
	freeRunInterval = 168 * time.Hour // weekly
	paidRunInterval = 24 * time.Hour  // daily
)

// CanRun is the run-frequency gate as a pure function: a brand that has never
// run may always run; otherwise the plan interval must have elapsed.
func CanRun(plan Plan, lastRunAt *time.Time, now time.Time) bool {
	if lastRunAt == nil {
		return true
	}
	interval := paidRunInterval
	if plan == PlanFree {
		interval = freeRunInterval
	}
	return now.Sub(*lastRunAt) >= interval
}

// NextRunAt reports when the gate opens again; zero time when it is open now.
func NextRunAt(plan Plan, lastRunAt *time.Time, now time.Time) time.Time {
	if CanRun(plan, lastRunAt, now) {
		return time.Time{}
	}
	interval := paidRunInterval
	if plan == PlanFree {
		interval = freeRunInterval
	}
	return lastRunAt.Add(interval)
}
