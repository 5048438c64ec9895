package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/brandlens/brandlens/internal/domain/runs"
)

type ResultRepository struct{ db *sql.DB }

func NewResultRepository(db *sql.DB) *ResultRepository { return &ResultRepository{db: db} }

// Save appends one per-query result. Results are never updated.
func (r *ResultRepository) Save(ctx context.Context, res *domain.Result) error {
	const q = `
INSERT INTO analysis_results
 (run_id, tenant_id, query, engine, mentioned, position, context, excerpt, citation, sentiment, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id;`

	createdAt := res.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var pos interface{}
	if res.Position != nil {
		pos = *res.Position
	}
	return r.db.QueryRowContext(ctx, q,
		res.RunID, res.TenantID, res.Query, res.Engine,
		res.Mentioned, pos, res.Context, res.Excerpt, res.Citation, res.Sentiment,
		createdAt,
	).Scan(&res.ID)
}

func (r *ResultRepository) ListByRun(ctx context.Context, tenant string, id domain.RunID) ([]*domain.Result, error) {
	const q = `
SELECT id, run_id, tenant_id, query, engine, mentioned, position, context, excerpt, citation, sentiment, created_at
FROM analysis_results
WHERE tenant_id=$1 AND run_id=$2
ORDER BY id ASC;`

	rows, err := r.db.QueryContext(ctx, q, tenant, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Result
	for rows.Next() {
		var res domain.Result
		var pos sql.NullInt64
		if err := rows.Scan(
			&res.ID, &res.RunID, &res.TenantID, &res.Query, &res.Engine,
			&res.Mentioned, &pos, &res.Context, &res.Excerpt, &res.Citation, &res.Sentiment,
			&res.CreatedAt,
		); err != nil {
			return nil, err
		}
		if pos.Valid {
			p := int(pos.Int64)
			res.Position = &p
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}

func (r *ResultRepository) CountByRun(ctx context.Context, tenant string, id domain.RunID) (int, error) {
	const q = `SELECT COUNT(*) FROM analysis_results WHERE tenant_id=$1 AND run_id=$2;`
	var n int
	if err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
