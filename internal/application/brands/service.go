package brands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens/internal/application"
	domain "github.com/brandlens/brandlens/internal/domain/brands"
	"github.com/brandlens/brandlens/internal/domain/visibility"
)

// ErrNotOwned mirrors the runs guard for read paths.
var ErrNotOwned = errors.New("brand not owned by caller")

// ErrInvalid flags malformed input rejected before any persistence.
var ErrInvalid = errors.New("invalid request")

// Service implements brand CRUD use-cases.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

// CreateCommand holds the onboarding wizard inputs.
type CreateCommand struct {
	TenantID string
	Name     string
	Topic    string
	Plan     string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*domain.Brand, error) {
	name := strings.TrimSpace(cmd.Name)
	topic := strings.TrimSpace(cmd.Topic)
	if name == "" || topic == "" {
		return nil, fmt.Errorf("%w: name and topic are required", ErrInvalid)
	}

	plan := visibility.Plan(cmd.Plan)
	if plan != visibility.PlanFree && plan != visibility.PlanPro {
		plan = visibility.PlanFree
	}

	b := &domain.Brand{
		ID:        domain.BrandID(uuid.New().String()),
		TenantID:  cmd.TenantID,
		Name:      name,
		Topic:     topic,
		Plan:      plan,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get fetches a brand and enforces ownership.
func (s *Service) Get(ctx context.Context, tenant string, id domain.BrandID) (*domain.Brand, error) {
	b, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.TenantID != tenant {
		return nil, ErrNotOwned
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, tenant string, limit int) ([]*domain.Brand, error) {
	return s.Repo.ListByTenant(ctx, tenant, limit)
}
