package competitors

import "time"

// Competitor is one entry of a competitor analysis for a run: who else the
// models surface, how visible they look, and the gap to close.
type Competitor struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	RunID     string    `json:"run_id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Gap       string    `json:"gap"`
	CreatedAt time.Time `json:"created_at"`
}
