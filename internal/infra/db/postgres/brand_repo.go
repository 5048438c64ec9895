package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/brandlens/brandlens/internal/domain/brands"
	"github.com/brandlens/brandlens/internal/domain/visibility"
)

type BrandRepository struct{ db *sql.DB }

func NewBrandRepository(db *sql.DB) *BrandRepository { return &BrandRepository{db: db} }

func (r *BrandRepository) Save(ctx context.Context, b *domain.Brand) error {
	const q = `
INSERT INTO brands
 (id, tenant_id, name, topic, plan, visibility_score, last_run, run_in_progress, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
 name = EXCLUDED.name,
 topic = EXCLUDED.topic,
 plan = EXCLUDED.plan;`

	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var lastRun interface{}
	if b.LastRun != nil {
		lastRun = *b.LastRun
	}
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.TenantID, b.Name, b.Topic, string(b.Plan),
		b.VisibilityScore, lastRun, b.RunInProgress, createdAt,
	)
	return err
}

func (r *BrandRepository) Get(ctx context.Context, id domain.BrandID) (*domain.Brand, error) {
	const q = `
SELECT id, tenant_id, name, topic, plan, visibility_score, last_run, run_in_progress, created_at
FROM brands
WHERE id=$1
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, id)

	var b domain.Brand
	var plan string
	var lastRun sql.NullTime
	if err := row.Scan(
		&b.ID, &b.TenantID, &b.Name, &b.Topic, &plan,
		&b.VisibilityScore, &lastRun, &b.RunInProgress, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	b.Plan = visibility.Plan(plan)
	if lastRun.Valid {
		t := lastRun.Time
		b.LastRun = &t
	}
	return &b, nil
}

func (r *BrandRepository) ListByTenant(ctx context.Context, tenant string, limit int) ([]*domain.Brand, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, name, topic, plan, visibility_score, last_run, run_in_progress, created_at
FROM brands
WHERE tenant_id=$1
ORDER BY created_at DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Brand
	for rows.Next() {
		var b domain.Brand
		var plan string
		var lastRun sql.NullTime
		if err := rows.Scan(
			&b.ID, &b.TenantID, &b.Name, &b.Topic, &plan,
			&b.VisibilityScore, &lastRun, &b.RunInProgress, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		b.Plan = visibility.Plan(plan)
		if lastRun.Valid {
			t := lastRun.Time
			b.LastRun = &t
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *BrandRepository) UpdateScore(ctx context.Context, tenant string, id domain.BrandID, score int, lastRun time.Time) error {
	const q = `
UPDATE brands
SET visibility_score = $1, last_run = $2
WHERE tenant_id = $3 AND id = $4;`
	_, err := r.db.ExecContext(ctx, q, score, lastRun, tenant, id)
	return err
}

func (r *BrandRepository) TryLock(ctx context.Context, tenant string, id domain.BrandID) (bool, error) {
	const q = `
UPDATE brands
SET run_in_progress = TRUE
WHERE tenant_id = $1 AND id = $2 AND run_in_progress = FALSE;`
	res, err := r.db.ExecContext(ctx, q, tenant, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *BrandRepository) Unlock(ctx context.Context, tenant string, id domain.BrandID) error {
	const q = `
UPDATE brands
SET run_in_progress = FALSE
WHERE tenant_id = $1 AND id = $2;`
	_, err := r.db.ExecContext(ctx, q, tenant, id)
	return err
}
