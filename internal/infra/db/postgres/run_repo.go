package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/brandlens/brandlens/internal/domain/runs"
)

type RunRepository struct{ db *sql.DB }

func NewRunRepository(db *sql.DB) *RunRepository { return &RunRepository{db: db} }

func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	const q = `
INSERT INTO analysis_runs
 (id, brand_id, tenant_id, status, queries_completed, total_queries,
  visibility_score, total_mentions, avg_position, mention_rate,
  error_message, report_url, started_at, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 queries_completed = EXCLUDED.queries_completed,
 visibility_score = EXCLUDED.visibility_score,
 total_mentions = EXCLUDED.total_mentions,
 avg_position = EXCLUDED.avg_position,
 mention_rate = EXCLUDED.mention_rate,
 error_message = EXCLUDED.error_message,
 report_url = EXCLUDED.report_url,
 completed_at = EXCLUDED.completed_at;`

	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	var completed interface{}
	if run.CompletedAt != nil {
		completed = *run.CompletedAt
	}
	_, err := r.db.ExecContext(ctx, q,
		run.ID, run.BrandID, run.TenantID, string(run.Status),
		run.QueriesCompleted, run.TotalQueries,
		run.VisibilityScore, run.TotalMentions, run.AvgPosition, run.MentionRate,
		run.ErrorMessage, run.ReportURL, started, completed,
	)
	return err
}

func (r *RunRepository) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Run, error) {
	const q = `
SELECT id, brand_id, tenant_id, status, queries_completed, total_queries,
       visibility_score, total_mentions, avg_position, mention_rate,
       error_message, report_url, started_at, completed_at
FROM analysis_runs
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)

	var run domain.Run
	var status string
	var completedAt sql.NullTime
	if err := row.Scan(
		&run.ID, &run.BrandID, &run.TenantID, &status,
		&run.QueriesCompleted, &run.TotalQueries,
		&run.VisibilityScore, &run.TotalMentions, &run.AvgPosition, &run.MentionRate,
		&run.ErrorMessage, &run.ReportURL, &run.StartedAt, &completedAt,
	); err != nil {
		return nil, err
	}
	run.Status = domain.Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

func (r *RunRepository) Latest(ctx context.Context, tenant, brandID string, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
SELECT id, brand_id, tenant_id, status, queries_completed, total_queries,
       visibility_score, total_mentions, avg_position, mention_rate,
       error_message, report_url, started_at, completed_at
FROM analysis_runs
WHERE tenant_id=$1`
	args := []interface{}{tenant}
	if brandID != "" {
		query += " AND brand_id=$2 ORDER BY started_at DESC LIMIT $3;"
		args = append(args, brandID, limit)
	} else {
		query += " ORDER BY started_at DESC LIMIT $2;"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Run
	for rows.Next() {
		var run domain.Run
		var status string
		var completedAt sql.NullTime
		if err := rows.Scan(
			&run.ID, &run.BrandID, &run.TenantID, &status,
			&run.QueriesCompleted, &run.TotalQueries,
			&run.VisibilityScore, &run.TotalMentions, &run.AvgPosition, &run.MentionRate,
			&run.ErrorMessage, &run.ReportURL, &run.StartedAt, &completedAt,
		); err != nil {
			return nil, err
		}
		run.Status = domain.Status(status)
		if completedAt.Valid {
			t := completedAt.Time
			run.CompletedAt = &t
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}

func (r *RunRepository) UpdateProgress(ctx context.Context, tenant string, id domain.RunID, completed int) error {
	const q = `
UPDATE analysis_runs
SET queries_completed = $1
WHERE tenant_id = $2 AND id = $3 AND queries_completed < $1;`
	_, err := r.db.ExecContext(ctx, q, completed, tenant, id)
	return err
}
