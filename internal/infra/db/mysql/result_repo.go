package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/brandlens/brandlens/internal/domain/runs"
)

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Save appends one per-query result. Results are never updated.
func (r *ResultRepository) Save(ctx context.Context, res *domain.Result) error {
	const q = `
INSERT INTO analysis_results
 (run_id, tenant_id, query, engine, mentioned, position, context, excerpt, citation, sentiment, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?);
`
	createdAt := res.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	out, err := r.db.ExecContext(ctx, q,
		res.RunID, res.TenantID, res.Query, res.Engine,
		res.Mentioned, nullInt(res.Position), res.Context, res.Excerpt, res.Citation, res.Sentiment,
		createdAt,
	)
	if err != nil {
		return err
	}
	if id, err := out.LastInsertId(); err == nil {
		res.ID = id
	}
	return nil
}

func (r *ResultRepository) ListByRun(ctx context.Context, tenant string, id domain.RunID) ([]*domain.Result, error) {
	const q = `
SELECT id, run_id, tenant_id, query, engine, mentioned, position, context, excerpt, citation, sentiment, created_at
FROM analysis_results
WHERE tenant_id=? AND run_id=?
ORDER BY id ASC;
`
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
		res.Position = intPtr(pos)
		out = append(out, &res)
	}
	return out, rows.Err()
}

func (r *ResultRepository) CountByRun(ctx context.Context, tenant string, id domain.RunID) (int, error) {
	const q = `SELECT COUNT(*) FROM analysis_results WHERE tenant_id=? AND run_id=?;`
	var n int
	if err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
