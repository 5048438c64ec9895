package coach

import (
	"context"
	"errors"
	"fmt"

	appcredits "github.com/brandlens/brandlens/internal/application/credits"
	"github.com/brandlens/brandlens/internal/domain/ai"
	"github.com/brandlens/brandlens/internal/domain/brands"
	"github.com/brandlens/brandlens/internal/infra/ai/prompt"
)

var (
	ErrInvalid  = errors.New("invalid request")
	ErrNotOwned = errors.New("brand not owned by caller")
)

// Service is the chat coach: an LLM conversation grounded in the brand's
// latest visibility state. Every call logs its token usage against the
// tenant's credit ledger.
type Service struct {
	Brands  brands.Repository
	Model   ai.ChatClient
	Credits *appcredits.Service
}

// ChatCommand is one user turn.
type ChatCommand struct {
	TenantID string
	BrandID  string
	Message  string
}

// ChatReply carries the model answer plus the ledger balance after logging.
type ChatReply struct {
	Reply           string `json:"reply"`
	TokensUsed      int64  `json:"tokens_used"`
	TokensRemaining int64  `json:"tokens_remaining"`
}

func (s *Service) Chat(ctx context.Context, cmd ChatCommand) (*ChatReply, error) {
	if cmd.Message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalid)
	}

	brand, err := s.Brands.Get(ctx, brands.BrandID(cmd.BrandID))
	if err != nil {
		return nil, err
	}
	if brand.TenantID != cmd.TenantID {
		return nil, ErrNotOwned
	}

	// Budget gate before the model call.
	period, err := s.Credits.Ensure(ctx, cmd.TenantID, brand.Plan)
	if err != nil {
		return nil, err
	}
	if period.Remaining() <= 0 {
		return nil, ai.ErrQuotaExceeded
	}

	system := prompt.CoachSystemPrompt(brand.Name, brand.Topic, brand.VisibilityScore)
	reply, usage, err := s.Model.Complete(ctx, system, cmd.Message)
	if err != nil {
		return nil, fmt.Errorf("coach model call: %w", err)
	}

	tokens := int64(0)
	if usage != nil {
		tokens = int64(usage.PromptTokens + usage.CompletionTokens)
	}
	period, err = s.Credits.LogUsage(ctx, cmd.TenantID, brand.Plan, "coach", tokens)
	if err != nil {
		return nil, err
	}

	return &ChatReply{
		Reply:           reply,
		TokensUsed:      tokens,
		TokensRemaining: period.Remaining(),
	}, nil
}
