package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens/internal/application"
	"github.com/brandlens/brandlens/internal/domain/ai"
	"github.com/brandlens/brandlens/internal/domain/brands"
	domain "github.com/brandlens/brandlens/internal/domain/runs"
	"github.com/brandlens/brandlens/internal/domain/visibility"
)

// Guard errors surfaced before any run state is created.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotOwned       = errors.New("brand not owned by caller")
	ErrRateLimited    = errors.New("run frequency limit reached for plan")
	ErrRunInProgress  = errors.New("a run is already in progress for this brand")
)

const (
	defaultConcurrency = 4
	defaultBatchPause  = 200 * time.Millisecond
)

// Service orchestrates analysis runs: guards, query generation, the batch
// runner, scoring, insights, and final brand state. Safe for concurrent use;
// all state lives in the database.
type Service struct {
	Brands   brands.Repository
	Runs     domain.Repository
	Results  domain.ResultRepository
	Insights domain.InsightRepository
	Reports  domain.ReportArchive // optional; nil disables report archiving
	Search   ai.SearchClient
	Matcher  visibility.Matcher
	Clock    application.Clock

	// Concurrency and BatchPause default to 4 and 200ms when zero.
	Concurrency int
	BatchPause  time.Duration
}

// TriggerCommand starts a run for a brand owned by the tenant.
type TriggerCommand struct {
	TenantID string
	BrandID  string
}

// TriggerResult is the synchronous trigger response.
type TriggerResult struct {
	Success      bool   `json:"success"`
	Score        int    `json:"score"`
	Mentions     int    `json:"mentions"`
	TotalQueries int    `json:"totalQueries"`
	RunID        string `json:"runId"`
}

// Trigger runs the whole pipeline synchronously and returns the aggregate
// result. Guard failures reject before any run row exists; failures after
// that point are captured on the run and returned as errors.
func (s *Service) Trigger(ctx context.Context, cmd TriggerCommand) (TriggerResult, error) {
	if cmd.BrandID == "" {
		return TriggerResult{}, fmt.Errorf("%w: brandId is required", ErrInvalidRequest)
	}

	brand, err := s.Brands.Get(ctx, brands.BrandID(cmd.BrandID))
	if err != nil {
		return TriggerResult{}, err
	}
	if brand.TenantID != cmd.TenantID {
		return TriggerResult{}, ErrNotOwned
	}

	now := s.Clock.Now()
	if !visibility.CanRun(brand.Plan, brand.LastRun, now) {
		next := visibility.NextRunAt(brand.Plan, brand.LastRun, now)
		return TriggerResult{}, fmt.Errorf("%w: next run allowed at %s", ErrRateLimited, next.UTC().Format(time.RFC3339))
	}

	// One run per brand at a time: compare-and-swap on run_in_progress.
	locked, err := s.Brands.TryLock(ctx, cmd.TenantID, brand.ID)
	if err != nil {
		return TriggerResult{}, err
	}
	if !locked {
		return TriggerResult{}, ErrRunInProgress
	}
	defer func() {
		if err := s.Brands.Unlock(context.Background(), cmd.TenantID, brand.ID); err != nil {
			log.Printf("run: unlock brand %s failed: %v", brand.ID, err)
		}
	}()

	queries := visibility.GenerateQueries(brand.Topic, brand.Name)
	run := &domain.Run{
		ID:           domain.RunID(uuid.New().String()),
		BrandID:      cmd.BrandID,
		TenantID:     cmd.TenantID,
		Status:       domain.StatusProcessing,
		TotalQueries: len(queries),
		StartedAt:    now,
	}
	if err := s.Runs.Save(ctx, run); err != nil {
		return TriggerResult{}, err
	}

	// Credential preflight: without an upstream key the run fails before a
	// single query is issued and no result rows are written.
	if err := s.Search.Ready(); err != nil {
		s.markFailed(run, err)
		return TriggerResult{RunID: string(run.ID)}, err
	}

	results, err := s.runBatches(ctx, run, queries, brand.Name)
	if err != nil {
		s.markFailed(run, err)
		return TriggerResult{RunID: string(run.ID)}, err
	}

	if err := s.finalize(ctx, run, brand, results); err != nil {
		s.markFailed(run, err)
		return TriggerResult{RunID: string(run.ID)}, err
	}

	return TriggerResult{
		Success:      true,
		Score:        run.VisibilityScore,
		Mentions:     run.TotalMentions,
		TotalQueries: run.TotalQueries,
		RunID:        string(run.ID),
	}, nil
}

// runBatches drives the mention checker over all queries in fixed-width
// waves. Per-query upstream failures are absorbed as non-mentions; a failed
// result persist is fatal. Exactly one result row is written per query.
func (s *Service) runBatches(ctx context.Context, run *domain.Run, queries []string, brandName string) ([]*domain.Result, error) {
	width := s.Concurrency
	if width <= 0 {
		width = defaultConcurrency
	}
	pause := s.BatchPause
	if pause <= 0 {
		pause = defaultBatchPause
	}

	results := make([]*domain.Result, len(queries))
	var mu sync.Mutex
	var persistErr error

	for start := 0; start < len(queries); start += width {
		end := start + width
		if end > len(queries) {
			end = len(queries)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				res := s.checkQuery(ctx, run, queries[idx], brandName)
				if err := s.Results.Save(ctx, res); err != nil {
					mu.Lock()
					if persistErr == nil {
						persistErr = fmt.Errorf("persist result for query %d: %w", idx, err)
					}
					mu.Unlock()
					return
				}
				mu.Lock()
				results[idx] = res
				mu.Unlock()
			}(i)
		}
		wg.Wait()

		if persistErr != nil {
			return nil, persistErr
		}

		if err := s.Runs.UpdateProgress(ctx, run.TenantID, run.ID, end); err != nil {
			log.Printf("run %s: progress update failed: %v", run.ID, err)
		}
		run.QueriesCompleted = end

		// Small gap between waves to ease upstream rate limits.
		if end < len(queries) {
			time.Sleep(pause)
		}
	}

	return results, nil
}

// checkQuery performs one upstream call and converts it into a result row.
// Upstream errors are fail-safe negative: the query is recorded as not
// mentioned rather than aborting the run.
func (s *Service) checkQuery(ctx context.Context, run *domain.Run, query, brandName string) *domain.Result {
	res := &domain.Result{
		RunID:     run.ID,
		TenantID:  run.TenantID,
		Query:     query,
		Engine:    s.Search.Engine(),
		CreatedAt: s.Clock.Now(),
	}

	answer, err := s.Search.Search(ctx, query)
	if err != nil {
		log.Printf("run %s: query %q failed upstream: %v", run.ID, query, err)
		return res
	}
	res.Excerpt = answer.Text

	m := visibility.DetectMention(s.Matcher, answer.Text, brandName)
	if !m.Mentioned {
		return res
	}

	pos := m.Position
	res.Mentioned = true
	res.Position = &pos
	res.Context = m.Context
	res.Sentiment = visibility.DetectSentiment(m.Context)
	if len(answer.Citations) > 0 {
		res.Citation = answer.Citations[0]
	}
	return res
}

// finalize scores the result set, regenerates insights, archives the raw
// report, and flips run and brand into their completed state.
func (s *Service) finalize(ctx context.Context, run *domain.Run, brand *brands.Brand, results []*domain.Result) error {
	scoreInputs := make([]visibility.ScoreInput, len(results))
	insightInputs := make([]visibility.InsightInput, len(results))
	mentions := 0
	for i, r := range results {
		pos := 0
		if r.Position != nil {
			pos = *r.Position
		}
		scoreInputs[i] = visibility.ScoreInput{Mentioned: r.Mentioned, Position: pos}
		insightInputs[i] = visibility.InsightInput{
			Query:     r.Query,
			Mentioned: r.Mentioned,
			Position:  pos,
			Citation:  r.Citation,
		}
		if r.Mentioned {
			mentions++
		}
	}

	run.VisibilityScore = visibility.Score(scoreInputs)
	run.TotalMentions = mentions
	run.MentionRate = visibility.MentionRate(scoreInputs)
	run.AvgPosition = visibility.AveragePosition(scoreInputs)
	run.QueriesCompleted = len(results)

	texts := visibility.GenerateInsights(insightInputs, brand.Topic, brand.Name, run.VisibilityScore)
	insights := make([]*domain.Insight, len(texts))
	now := s.Clock.Now()
	for i, text := range texts {
		insights[i] = &domain.Insight{
			ID:        uuid.New().String(),
			TenantID:  run.TenantID,
			BrandID:   run.BrandID,
			RunID:     run.ID,
			Text:      text,
			Ordinal:   i,
			CreatedAt: now,
		}
	}
	if err := s.Insights.ReplaceForBrand(ctx, run.TenantID, run.BrandID, insights); err != nil {
		return fmt.Errorf("replace insights: %w", err)
	}

	// Report archive is best effort: a storage outage should not fail a run
	// whose results are already durable in the database.
	if s.Reports != nil {
		if payload, err := json.Marshal(results); err == nil {
			key := fmt.Sprintf("%s/%s/results.json", run.TenantID, run.ID)
			if url, err := s.Reports.UploadReport(ctx, key, payload); err != nil {
				log.Printf("run %s: report archive failed: %v", run.ID, err)
			} else {
				run.ReportURL = url
			}
		}
	}

	// Brand state first: once the run is saved completed no failure path may
	// run, so the run row sees exactly one terminal transition.
	completedAt := s.Clock.Now()
	if err := s.Brands.UpdateScore(ctx, run.TenantID, brand.ID, run.VisibilityScore, completedAt); err != nil {
		return fmt.Errorf("update brand score: %w", err)
	}

	run.Status = domain.StatusCompleted
	run.CompletedAt = &completedAt
	if err := s.Runs.Save(ctx, run); err != nil {
		return fmt.Errorf("save completed run: %w", err)
	}
	return nil
}

// markFailed records a fatal orchestration error on the run. Partial result
// rows already written stay in storage.
func (s *Service) markFailed(run *domain.Run, cause error) {
	run.Status = domain.StatusFailed
	run.ErrorMessage = cause.Error()
	if err := s.Runs.Save(context.Background(), run); err != nil {
		log.Printf("run %s: could not record failure: %v", run.ID, err)
	}
}

// Get returns one run scoped by tenant.
func (s *Service) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Run, error) {
	return s.Runs.Get(ctx, tenant, id)
}

// Latest returns the most recent runs, optionally filtered by brand.
func (s *Service) Latest(ctx context.Context, tenant, brandID string, limit int) ([]*domain.Run, error) {
	return s.Runs.Latest(ctx, tenant, brandID, limit)
}

// ResultsByRun returns the per-query rows of a run.
func (s *Service) ResultsByRun(ctx context.Context, tenant string, id domain.RunID) ([]*domain.Result, error) {
	return s.Results.ListByRun(ctx, tenant, id)
}

// InsightsByBrand returns the current insight set for a brand.
func (s *Service) InsightsByBrand(ctx context.Context, tenant, brandID string) ([]*domain.Insight, error) {
	return s.Insights.ListByBrand(ctx, tenant, brandID)
}
