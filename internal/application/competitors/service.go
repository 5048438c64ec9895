package competitors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brandlens/brandlens/internal/application"
	"github.com/brandlens/brandlens/internal/domain/ai"
	domain "github.com/brandlens/brandlens/internal/domain/competitors"
	"github.com/brandlens/brandlens/internal/domain/runs"
	"github.com/brandlens/brandlens/internal/infra/ai/prompt"
)

// ErrNoResults indicates the run has no stored results to analyze.
var ErrNoResults = errors.New("run has no results to analyze")

// Responses longer than this are truncated before being handed to the model.
const maxBodyChars = 1000

// Service re-reads a run's stored results and asks an LLM to identify the
// competitors the AI engines surfaced instead of the brand.
type Service struct {
	Results runs.ResultRepository
	Repo    domain.Repository
	Chat    ai.ChatClient
	Clock   application.Clock
}

// Analyze summarizes a run's results, delegates competitor identification to
// the model, and persists the parsed entries. A model output that fails to
// parse surfaces as domain.ErrBadModelJSON, never as silent garbage.
func (s *Service) Analyze(ctx context.Context, tenant, runID string) ([]*domain.Competitor, error) {
	results, err := s.Results.ListByRun(ctx, tenant, runs.RunID(runID))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	var sb strings.Builder
	for _, r := range results {
		// Full response text when we have it; older rows only carry the
		// mention context window.
		body := r.Excerpt
		if body == "" {
			body = r.Context
		}
		if len(body) > maxBodyChars {
			body = body[:maxBodyChars]
		}
		fmt.Fprintf(&sb, "Query: %s\nMentioned: %t\nExcerpt: %s\n\n", r.Query, r.Mentioned, body)
	}

	raw, _, err := s.Chat.Complete(ctx, prompt.CompetitorSystemPrompt(), prompt.CompetitorUserPrompt(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("competitor model call: %w", err)
	}

	entries, err := domain.ParseModelJSON(raw)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	list := make([]*domain.Competitor, len(entries))
	for i, e := range entries {
		list[i] = &domain.Competitor{
			TenantID:  tenant,
			RunID:     runID,
			Name:      e.Name,
			Score:     e.Score,
			Gap:       e.Gap,
			CreatedAt: now,
		}
	}
	if err := s.Repo.ReplaceForRun(ctx, tenant, runID, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListByRun returns stored competitor rows.
func (s *Service) ListByRun(ctx context.Context, tenant, runID string) ([]*domain.Competitor, error) {
	return s.Repo.ListByRun(ctx, tenant, runID)
}
