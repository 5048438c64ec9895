package postgres

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/brandlens/brandlens/internal/domain/runs"
)

type InsightRepository struct{ db *sql.DB }

func NewInsightRepository(db *sql.DB) *InsightRepository { return &InsightRepository{db: db} }

// ReplaceForBrand swaps the brand's insight set in one transaction so
// dashboards never observe a half-written set.
func (r *InsightRepository) ReplaceForBrand(ctx context.Context, tenant, brandID string, insights []*domain.Insight) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM insights WHERE tenant_id=$1 AND brand_id=$2;`, tenant, brandID); err != nil {
		return fmt.Errorf("delete old insights: %w", err)
	}

	const ins = `
INSERT INTO insights (id, tenant_id, brand_id, run_id, text, ordinal, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	for _, in := range insights {
		if _, err := tx.ExecContext(ctx, ins,
			in.ID, in.TenantID, in.BrandID, in.RunID, in.Text, in.Ordinal, in.CreatedAt); err != nil {
			return fmt.Errorf("insert insight: %w", err)
		}
	}
	return tx.Commit()
}

func (r *InsightRepository) ListByBrand(ctx context.Context, tenant, brandID string) ([]*domain.Insight, error) {
	const q = `
SELECT id, tenant_id, brand_id, run_id, text, ordinal, created_at
FROM insights
WHERE tenant_id=$1 AND brand_id=$2
ORDER BY ordinal ASC;`

	rows, err := r.db.QueryContext(ctx, q, tenant, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Insight
	for rows.Next() {
		var in domain.Insight
		if err := rows.Scan(
			&in.ID, &in.TenantID, &in.BrandID, &in.RunID, &in.Text, &in.Ordinal, &in.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &in)
	}
	return out, rows.Err()
}
