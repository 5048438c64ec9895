package runs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brandlens/brandlens/internal/domain/ai"
	"github.com/brandlens/brandlens/internal/domain/brands"
	domain "github.com/brandlens/brandlens/internal/domain/runs"
	"github.com/brandlens/brandlens/internal/domain/visibility"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeBrandRepo struct {
	mu             sync.Mutex
	brand          *brands.Brand
	locked         bool
	score          int
	scoreSet       bool
	updateScoreErr error
}

func (f *fakeBrandRepo) Save(ctx context.Context, b *brands.Brand) error { return nil }

func (f *fakeBrandRepo) Get(ctx context.Context, id brands.BrandID) (*brands.Brand, error) {
	if f.brand == nil || f.brand.ID != id {
		return nil, errors.New("brand not found")
	}
	return f.brand, nil
}

func (f *fakeBrandRepo) ListByTenant(ctx context.Context, tenant string, limit int) ([]*brands.Brand, error) {
	return nil, nil
}

func (f *fakeBrandRepo) UpdateScore(ctx context.Context, tenant string, id brands.BrandID, score int, lastRun time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateScoreErr != nil {
		return f.updateScoreErr
	}
	f.score = score
	f.scoreSet = true
	return nil
}

func (f *fakeBrandRepo) TryLock(ctx context.Context, tenant string, id brands.BrandID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked {
		return false, nil
	}
	f.locked = true
	return true, nil
}

func (f *fakeBrandRepo) Unlock(ctx context.Context, tenant string, id brands.BrandID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = false
	return nil
}

type fakeRunRepo struct {
	mu       sync.Mutex
	runs     map[domain.RunID]domain.Run
	progress []int
	statuses []domain.Status
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: make(map[domain.RunID]domain.Run)}
}

func (f *fakeRunRepo) Save(ctx context.Context, r *domain.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[r.ID] = *r
	f.statuses = append(f.statuses, r.Status)
	return nil
}

func (f *fakeRunRepo) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runs[id]
	if !ok {
		return nil, errors.New("run not found")
	}
	return &r, nil
}

func (f *fakeRunRepo) Latest(ctx context.Context, tenant, brandID string, limit int) ([]*domain.Run, error) {
	return nil, nil
}

func (f *fakeRunRepo) UpdateProgress(ctx context.Context, tenant string, id domain.RunID, completed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = append(f.progress, completed)
	return nil
}

func (f *fakeRunRepo) only(t *testing.T) domain.Run {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.runs) != 1 {
		t.Fatalf("expected exactly one run, got %d", len(f.runs))
	}
	for _, r := range f.runs {
		return r
	}
	return domain.Run{}
}

type fakeResultRepo struct {
	mu      sync.Mutex
	saved   []*domain.Result
	saveErr error
}

func (f *fakeResultRepo) Save(ctx context.Context, r *domain.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeResultRepo) ListByRun(ctx context.Context, tenant string, id domain.RunID) ([]*domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.Result(nil), f.saved...), nil
}

func (f *fakeResultRepo) CountByRun(ctx context.Context, tenant string, id domain.RunID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved), nil
}

type fakeInsightRepo struct {
	mu       sync.Mutex
	replaced []*domain.Insight
}

func (f *fakeInsightRepo) ReplaceForBrand(ctx context.Context, tenant, brandID string, insights []*domain.Insight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced = insights
	return nil
}

func (f *fakeInsightRepo) ListByBrand(ctx context.Context, tenant, brandID string) ([]*domain.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replaced, nil
}

// searchStub is the configurable SearchClient used across the tests.
type searchStub struct {
	mu       sync.Mutex
	answer   string
	answerFn func(query string) string
	cite     string
	err      error
	readyErr error
	searches int
}

func (s *searchStub) Search(ctx context.Context, query string) (*ai.SearchAnswer, error) {
	s.mu.Lock()
	s.searches++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	text := s.answer
	if s.answerFn != nil {
		text = s.answerFn(query)
	}
	ans := &ai.SearchAnswer{Text: text}
	if s.cite != "" {
		ans.Citations = []string{s.cite}
	}
	return ans, nil
}

func (s *searchStub) Engine() string { return "stub" }
func (s *searchStub) Ready() error   { return s.readyErr }

func newService(brandRepo *fakeBrandRepo, runRepo *fakeRunRepo, resultRepo *fakeResultRepo, insightRepo *fakeInsightRepo, search *searchStub, clock fixedClock) *Service {
	return &Service{
		Brands:      brandRepo,
		Runs:        runRepo,
		Results:     resultRepo,
		Insights:    insightRepo,
		Search:      search,
		Matcher:     visibility.SubstringMatcher{},
		Clock:       clock,
		Concurrency: 4,
		BatchPause:  time.Millisecond,
	}
}

func testBrand(tenant string) *brands.Brand {
	return &brands.Brand{
		ID:       "brand-1",
		TenantID: tenant,
		Name:     "Acme",
		Topic:    "plumbing",
		Plan:     visibility.PlanFree,
	}
}

func TestTriggerCompletesRun(t *testing.T) {
	brandRepo := &fakeBrandRepo{brand: testBrand("t1")}
	runRepo := newFakeRunRepo()
	resultRepo := &fakeResultRepo{}
	insightRepo := &fakeInsightRepo{}
	search := &searchStub{
		answer: "Acme is the top choice for plumbing in most rankings.",
		cite:   "https://example.com/rankings",
	}
	svc := newService(brandRepo, runRepo, resultRepo, insightRepo, search, fixedClock{t: time.Now()})

	res, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1", BrandID: "brand-1"})
	if err != nil {
		t.Fatalf("Trigger() error: %v", err)
	}

	if !res.Success {
		t.Error("expected success")
	}
	if res.TotalQueries != visibility.QueryCount {
		t.Errorf("totalQueries = %d, want %d", res.TotalQueries, visibility.QueryCount)
	}
	if res.Mentions != visibility.QueryCount {
		t.Errorf("mentions = %d, want %d", res.Mentions, visibility.QueryCount)
	}
	if res.Score != 100 {
		t.Errorf("score = %d, want 100 for all top-bucket mentions", res.Score)
	}

	run := runRepo.only(t)
	if run.Status != domain.StatusCompleted {
		t.Errorf("run status = %q, want %q", run.Status, domain.StatusCompleted)
	}
	if run.CompletedAt == nil {
		t.Error("completed run missing CompletedAt")
	}
	if len(resultRepo.saved) != visibility.QueryCount {
		t.Errorf("saved %d results, want %d", len(resultRepo.saved), visibility.QueryCount)
	}
	for _, r := range resultRepo.saved {
		if !r.Mentioned || r.Position == nil || *r.Position != 1 {
			t.Errorf("result %q not a bucket-1 mention: %+v", r.Query, r)
		}
		if r.Citation != "https://example.com/rankings" {
			t.Errorf("result %q missing citation", r.Query)
		}
		if r.Excerpt != search.answer {
			t.Errorf("result %q excerpt = %q, want the full answer text", r.Query, r.Excerpt)
		}
	}
	if len(insightRepo.replaced) == 0 {
		t.Error("expected insights to be replaced after a completed run")
	}
	if !brandRepo.scoreSet || brandRepo.score != 100 {
		t.Errorf("brand score not updated, got %d", brandRepo.score)
	}
	if brandRepo.locked {
		t.Error("brand lock not released")
	}
	if len(runRepo.progress) == 0 {
		t.Fatal("expected progress updates during the run")
	}
	if last := runRepo.progress[len(runRepo.progress)-1]; last != visibility.QueryCount {
		t.Errorf("final progress = %d, want %d", last, visibility.QueryCount)
	}
}

func TestTriggerRequiresBrandID(t *testing.T) {
	svc := newService(&fakeBrandRepo{}, newFakeRunRepo(), &fakeResultRepo{}, &fakeInsightRepo{}, &searchStub{}, fixedClock{t: time.Now()})

	_, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestTriggerRejectsForeignBrand(t *testing.T) {
	brandRepo := &fakeBrandRepo{brand: testBrand("other-tenant")}
	runRepo := newFakeRunRepo()
	svc := newService(brandRepo, runRepo, &fakeResultRepo{}, &fakeInsightRepo{}, &searchStub{}, fixedClock{t: time.Now()})

	_, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1", BrandID: "brand-1"})
	if !errors.Is(err, ErrNotOwned) {
		t.Errorf("expected ErrNotOwned, got %v", err)
	}
	if len(runRepo.runs) != 0 {
		t.Error("no run row should exist after an ownership rejection")
	}
}

func TestTriggerRateGate(t *testing.T) {
	now := time.Now()
	lastRun := now.Add(-2 * time.Hour)
	brand := testBrand("t1")
	brand.LastRun = &lastRun

	brandRepo := &fakeBrandRepo{brand: brand}
	runRepo := newFakeRunRepo()
	svc := newService(brandRepo, runRepo, &fakeResultRepo{}, &fakeInsightRepo{}, &searchStub{}, fixedClock{t: now})

	_, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1", BrandID: "brand-1"})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if len(runRepo.runs) != 0 {
		t.Error("no run row should exist after a rate gate rejection")
	}
}

func TestTriggerLockConflict(t *testing.T) {
	brandRepo := &fakeBrandRepo{brand: testBrand("t1"), locked: true}
	svc := newService(brandRepo, newFakeRunRepo(), &fakeResultRepo{}, &fakeInsightRepo{}, &searchStub{}, fixedClock{t: time.Now()})

	_, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1", BrandID: "brand-1"})
	if !errors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}
	if !brandRepo.locked {
		t.Error("a conflicting trigger must not release the holder's lock")
	}
}

func TestTriggerUpstreamErrorsRecordedAsMisses(t *testing.T) {
	brandRepo := &fakeBrandRepo{brand: testBrand("t1")}
	runRepo := newFakeRunRepo()
	resultRepo := &fakeResultRepo{}
	search := &searchStub{err: errors.New("upstream timeout")}
	svc := newService(brandRepo, runRepo, resultRepo, &fakeInsightRepo{}, search, fixedClock{t: time.Now()})

	res, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1", BrandID: "brand-1"})
	if err != nil {
		t.Fatalf("per-query upstream failures must not fail the run: %v", err)
	}
	if res.Score != 0 || res.Mentions != 0 {
		t.Errorf("expected zero score and mentions, got score=%d mentions=%d", res.Score, res.Mentions)
	}
	if len(resultRepo.saved) != visibility.QueryCount {
		t.Errorf("expected one result row per query, got %d", len(resultRepo.saved))
	}
	for _, r := range resultRepo.saved {
		if r.Mentioned {
			t.Errorf("result %q should be a miss", r.Query)
		}
	}
	if run := runRepo.only(t); run.Status != domain.StatusCompleted {
		t.Errorf("run status = %q, want completed", run.Status)
	}
}

func TestTriggerCredentialPreflight(t *testing.T) {
	brandRepo := &fakeBrandRepo{brand: testBrand("t1")}
	runRepo := newFakeRunRepo()
	resultRepo := &fakeResultRepo{}
	search := &searchStub{readyErr: errors.New("missing API key")}
	svc := newService(brandRepo, runRepo, resultRepo, &fakeInsightRepo{}, search, fixedClock{t: time.Now()})

	_, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1", BrandID: "brand-1"})
	if err == nil {
		t.Fatal("expected an error when the search client is not ready")
	}
	if len(resultRepo.saved) != 0 {
		t.Errorf("no results should be written, got %d", len(resultRepo.saved))
	}
	run := runRepo.only(t)
	if run.Status != domain.StatusFailed {
		t.Errorf("run status = %q, want failed", run.Status)
	}
	if run.ErrorMessage == "" {
		t.Error("failed run should carry an error message")
	}
	if brandRepo.locked {
		t.Error("lock must be released after a failed run")
	}
	if search.searches != 0 {
		t.Errorf("no queries should be issued, got %d", search.searches)
	}
}

func TestTriggerPersistFailureFailsRun(t *testing.T) {
	brandRepo := &fakeBrandRepo{brand: testBrand("t1")}
	runRepo := newFakeRunRepo()
	resultRepo := &fakeResultRepo{saveErr: errors.New("disk full")}
	search := &searchStub{answer: "Acme is mentioned"}
	svc := newService(brandRepo, runRepo, resultRepo, &fakeInsightRepo{}, search, fixedClock{t: time.Now()})

	_, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1", BrandID: "brand-1"})
	if err == nil {
		t.Fatal("expected an error when result persistence fails")
	}
	if run := runRepo.only(t); run.Status != domain.StatusFailed {
		t.Errorf("run status = %q, want failed", run.Status)
	}
	if brandRepo.locked {
		t.Error("lock must be released after a failed run")
	}
}

func TestTriggerBrandUpdateFailureFailsRun(t *testing.T) {
	brandRepo := &fakeBrandRepo{brand: testBrand("t1"), updateScoreErr: errors.New("db gone")}
	runRepo := newFakeRunRepo()
	search := &searchStub{answer: "Acme is mentioned"}
	svc := newService(brandRepo, runRepo, &fakeResultRepo{}, &fakeInsightRepo{}, search, fixedClock{t: time.Now()})

	_, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1", BrandID: "brand-1"})
	if err == nil {
		t.Fatal("expected an error when the brand score update fails")
	}
	if run := runRepo.only(t); run.Status != domain.StatusFailed {
		t.Errorf("run status = %q, want failed", run.Status)
	}
	// The run row must see exactly one terminal transition: never saved as
	// completed and then overwritten with failed.
	var terminals []domain.Status
	for _, st := range runRepo.statuses {
		if st == domain.StatusCompleted || st == domain.StatusFailed {
			terminals = append(terminals, st)
		}
	}
	if len(terminals) != 1 || terminals[0] != domain.StatusFailed {
		t.Errorf("persisted terminal statuses = %v, want exactly [failed]", terminals)
	}
	if brandRepo.locked {
		t.Error("lock must be released after a failed run")
	}
}

func TestTriggerMixedMentions(t *testing.T) {
	brandRepo := &fakeBrandRepo{brand: testBrand("t1")}
	runRepo := newFakeRunRepo()
	resultRepo := &fakeResultRepo{}

	// Every other upstream answer mentions the brand at the front.
	var n int
	var mu sync.Mutex
	search := &searchStub{answerFn: func(query string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		if n%2 == 0 {
			return "Acme leads the field here."
		}
		return "Other providers dominate this space."
	}}
	svc := newService(brandRepo, runRepo, resultRepo, &fakeInsightRepo{}, search, fixedClock{t: time.Now()})

	res, err := svc.Trigger(context.Background(), TriggerCommand{TenantID: "t1", BrandID: "brand-1"})
	if err != nil {
		t.Fatalf("Trigger() error: %v", err)
	}
	if res.Mentions != visibility.QueryCount/2 {
		t.Errorf("mentions = %d, want %d", res.Mentions, visibility.QueryCount/2)
	}
	run := runRepo.only(t)
	if run.TotalMentions != res.Mentions {
		t.Errorf("run mentions %d != response mentions %d", run.TotalMentions, res.Mentions)
	}
	if run.VisibilityScore != res.Score {
		t.Errorf("run score %d != response score %d", run.VisibilityScore, res.Score)
	}
	// Half mentioned at bucket 1: 35 rate points plus 15 bonus.
	if res.Score != 50 {
		t.Errorf("score = %d, want 50", res.Score)
	}
}
