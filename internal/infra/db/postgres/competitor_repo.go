package postgres

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/brandlens/brandlens/internal/domain/competitors"
)

type CompetitorRepository struct{ db *sql.DB }

func NewCompetitorRepository(db *sql.DB) *CompetitorRepository { return &CompetitorRepository{db: db} }

// ReplaceForRun swaps the run's competitor set transactionally; re-running
// the analysis overwrites the previous answer.
func (r *CompetitorRepository) ReplaceForRun(ctx context.Context, tenant, runID string, list []*domain.Competitor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM competitors WHERE tenant_id=$1 AND run_id=$2;`, tenant, runID); err != nil {
		return fmt.Errorf("delete old competitors: %w", err)
	}

	const ins = `
INSERT INTO competitors (tenant_id, run_id, name, score, gap, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`

	for _, c := range list {
		if _, err := tx.ExecContext(ctx, ins,
			c.TenantID, c.RunID, c.Name, c.Score, c.Gap, c.CreatedAt); err != nil {
			return fmt.Errorf("insert competitor: %w", err)
		}
	}
	return tx.Commit()
}

func (r *CompetitorRepository) ListByRun(ctx context.Context, tenant, runID string) ([]*domain.Competitor, error) {
	const q = `
SELECT id, tenant_id, run_id, name, score, gap, created_at
FROM competitors
WHERE tenant_id=$1 AND run_id=$2
ORDER BY score DESC;`

	rows, err := r.db.QueryContext(ctx, q, tenant, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Competitor
	for rows.Next() {
		var c domain.Competitor
		if err := rows.Scan(
			&c.ID, &c.TenantID, &c.RunID, &c.Name, &c.Score, &c.Gap, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
