package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/brandlens/brandlens/internal/domain/brands"
	"github.com/brandlens/brandlens/internal/domain/visibility"
)

type BrandRepository struct {
	db *sql.DB
}

func NewBrandRepository(db *sql.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// Save insert/update brand record
func (r *BrandRepository) Save(ctx context.Context, b *domain.Brand) error {
	const q = `
INSERT INTO brands
 (id, tenant_id, name, topic, plan, visibility_score, last_run, run_in_progress, created_at)
VALUES (?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 name=VALUES(name), topic=VALUES(topic), plan=VALUES(plan);
`
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.TenantID, b.Name, b.Topic, string(b.Plan),
		b.VisibilityScore, nullTime(b.LastRun), b.RunInProgress, createdAt,
	)
	return err
}

func (r *BrandRepository) Get(ctx context.Context, id domain.BrandID) (*domain.Brand, error) {
	const q = `
SELECT id, tenant_id, name, topic, plan, visibility_score, last_run, run_in_progress, created_at
FROM brands
WHERE id=? LIMIT 1;
`
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
	b.LastRun = timePtr(lastRun)
	return &b, nil
}

func (r *BrandRepository) ListByTenant(ctx context.Context, tenant string, limit int) ([]*domain.Brand, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, name, topic, plan, visibility_score, last_run, run_in_progress, created_at
FROM brands
WHERE tenant_id=? ORDER BY created_at DESC LIMIT ?;
`
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
		b.LastRun = timePtr(lastRun)
		out = append(out, &b)
	}
	return out, rows.Err()
}

// UpdateScore writes the cached score and last_run after a completed run.
func (r *BrandRepository) UpdateScore(ctx context.Context, tenant string, id domain.BrandID, score int, lastRun time.Time) error {
	const q = `
UPDATE brands
SET visibility_score = ?, last_run = ?
WHERE tenant_id = ? AND id = ?;
`
	_, err := r.db.ExecContext(ctx, q, score, lastRun, tenant, id)
	return err
}

// TryLock flips run_in_progress 0->1; RowsAffected tells us who won the race.
func (r *BrandRepository) TryLock(ctx context.Context, tenant string, id domain.BrandID) (bool, error) {
	const q = `
UPDATE brands
SET run_in_progress = 1
WHERE tenant_id = ? AND id = ? AND run_in_progress = 0;
`
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
SET run_in_progress = 0
WHERE tenant_id = ? AND id = ?;
`
	_, err := r.db.ExecContext(ctx, q, tenant, id)
	return err
}
