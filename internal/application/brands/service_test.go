package brands

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/brandlens/brandlens/internal/domain/brands"
	"github.com/brandlens/brandlens/internal/domain/visibility"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeRepo struct {
	saved *domain.Brand
	byID  map[domain.BrandID]*domain.Brand
}

func (f *fakeRepo) Save(ctx context.Context, b *domain.Brand) error {
	f.saved = b
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id domain.BrandID) (*domain.Brand, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeRepo) ListByTenant(ctx context.Context, tenant string, limit int) ([]*domain.Brand, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateScore(ctx context.Context, tenant string, id domain.BrandID, score int, lastRun time.Time) error {
	return nil
}

func (f *fakeRepo) TryLock(ctx context.Context, tenant string, id domain.BrandID) (bool, error) {
	return true, nil
}

func (f *fakeRepo) Unlock(ctx context.Context, tenant string, id domain.BrandID) error {
	return nil
}

func TestCreate(t *testing.T) {
	repo := &fakeRepo{}
	svc := &Service{Repo: repo, Clock: fixedClock{t: time.Now()}}

	b, err := svc.Create(context.Background(), CreateCommand{
		TenantID: "t1",
		Name:     "  Acme  ",
		Topic:    "plumbing",
		Plan:     "pro",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if b.Name != "Acme" {
		t.Errorf("name not trimmed: %q", b.Name)
	}
	if b.Plan != visibility.PlanPro {
		t.Errorf("plan = %q, want pro", b.Plan)
	}
	if b.ID == "" {
		t.Error("expected a generated ID")
	}
	if repo.saved != b {
		t.Error("brand not persisted")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := &Service{Repo: &fakeRepo{}, Clock: fixedClock{t: time.Now()}}

	tests := []struct {
		name string
		cmd  CreateCommand
	}{
		{"missing name", CreateCommand{TenantID: "t1", Topic: "plumbing"}},
		{"missing topic", CreateCommand{TenantID: "t1", Name: "Acme"}},
		{"whitespace name", CreateCommand{TenantID: "t1", Name: "   ", Topic: "plumbing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.cmd); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestCreateDefaultsToFreePlan(t *testing.T) {
	svc := &Service{Repo: &fakeRepo{}, Clock: fixedClock{t: time.Now()}}
	b, err := svc.Create(context.Background(), CreateCommand{
		TenantID: "t1", Name: "Acme", Topic: "plumbing", Plan: "enterprise",
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.Plan != visibility.PlanFree {
		t.Errorf("unknown plan should default to free, got %q", b.Plan)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := &fakeRepo{byID: map[domain.BrandID]*domain.Brand{
		"b1": {ID: "b1", TenantID: "owner"},
	}}
	svc := &Service{Repo: repo, Clock: fixedClock{t: time.Now()}}

	if _, err := svc.Get(context.Background(), "owner", "b1"); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), "intruder", "b1"); !errors.Is(err, ErrNotOwned) {
		t.Errorf("expected ErrNotOwned, got %v", err)
	}
}
