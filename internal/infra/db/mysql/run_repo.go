package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/brandlens/brandlens/internal/domain/runs"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save insert/update run record
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	const q = `
INSERT INTO analysis_runs
 (id, brand_id, tenant_id, status, queries_completed, total_queries,
  visibility_score, total_mentions, avg_position, mention_rate,
  error_message, report_url, started_at, completed_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 queries_completed=VALUES(queries_completed),
 visibility_score=VALUES(visibility_score),
 total_mentions=VALUES(total_mentions),
 avg_position=VALUES(avg_position),
 mention_rate=VALUES(mention_rate),
 error_message=VALUES(error_message),
 report_url=VALUES(report_url),
 completed_at=VALUES(completed_at);
`
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		run.ID, run.BrandID, run.TenantID, string(run.Status),
		run.QueriesCompleted, run.TotalQueries,
		run.VisibilityScore, run.TotalMentions, run.AvgPosition, run.MentionRate,
		run.ErrorMessage, run.ReportURL, started, nullTime(run.CompletedAt),
	)
	return err
}

func (r *RunRepository) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Run, error) {
	const q = `
SELECT id, brand_id, tenant_id, status, queries_completed, total_queries,
       visibility_score, total_mentions, avg_position, mention_rate,
       error_message, report_url, started_at, completed_at
FROM analysis_runs
WHERE tenant_id=? AND id=? LIMIT 1;
`
	return scanRun(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest runs per tenant, optionally filtered by brand.
func (r *RunRepository) Latest(ctx context.Context, tenant, brandID string, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
SELECT id, brand_id, tenant_id, status, queries_completed, total_queries,
       visibility_score, total_mentions, avg_position, mention_rate,
       error_message, report_url, started_at, completed_at
FROM analysis_runs
WHERE tenant_id=?`
	args := []interface{}{tenant}
	if brandID != "" {
		query += " AND brand_id=?"
		args = append(args, brandID)
	}
	query += " ORDER BY started_at DESC LIMIT ?;"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Run
	for rows.Next() {
		run, err := scanRunRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// UpdateProgress only bumps the progress counter.
func (r *RunRepository) UpdateProgress(ctx context.Context, tenant string, id domain.RunID, completed int) error {
	const q = `
UPDATE analysis_runs
SET queries_completed = ?
WHERE tenant_id = ? AND id = ? AND queries_completed < ?;
`
	_, err := r.db.ExecContext(ctx, q, completed, tenant, id, completed)
	return err
}

func scanRun(row *sql.Row) (*domain.Run, error) {
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
	run.CompletedAt = timePtr(completedAt)
	return &run, nil
}

func scanRunRows(rows *sql.Rows) (*domain.Run, error) {
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
	run.CompletedAt = timePtr(completedAt)
	return &run, nil
}
