package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appbrands "github.com/brandlens/brandlens/internal/application/brands"
	appcoach "github.com/brandlens/brandlens/internal/application/coach"
	appcompetitors "github.com/brandlens/brandlens/internal/application/competitors"
	appcredits "github.com/brandlens/brandlens/internal/application/credits"
	approuns "github.com/brandlens/brandlens/internal/application/runs"
	domai "github.com/brandlens/brandlens/internal/domain/ai"
	brandsdomain "github.com/brandlens/brandlens/internal/domain/brands"
	compdomain "github.com/brandlens/brandlens/internal/domain/competitors"
	creditsdomain "github.com/brandlens/brandlens/internal/domain/credits"
	runsdomain "github.com/brandlens/brandlens/internal/domain/runs"
	"github.com/brandlens/brandlens/internal/domain/visibility"
	"github.com/brandlens/brandlens/internal/middleware"
)

type Router struct {
	brandsSvc      *appbrands.Service
	runsSvc        *approuns.Service
	competitorsSvc *appcompetitors.Service
	creditsSvc     *appcredits.Service
	coachSvc       *appcoach.Service
}

func NewRouter(
	brandsSvc *appbrands.Service,
	runsSvc *approuns.Service,
	competitorsSvc *appcompetitors.Service,
	creditsSvc *appcredits.Service,
	coachSvc *appcoach.Service,
) http.Handler {
	r := &Router{
		brandsSvc:      brandsSvc,
		runsSvc:        runsSvc,
		competitorsSvc: competitorsSvc,
		creditsSvc:     creditsSvc,
		coachSvc:       coachSvc,
	}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/brands", r.wrap(r.handleCreateBrand))
		rt.Get("/brands", r.wrap(r.handleListBrands))
		rt.Get("/brands/{id}", r.wrap(r.handleGetBrand))
		rt.Get("/brands/{id}/insights", r.wrap(r.handleInsights))

		rt.Post("/runs", r.wrap(r.handleTriggerRun))
		rt.Get("/runs/latest", r.wrap(r.handleLatestRuns))
		rt.Get("/runs/{id}", r.wrap(r.handleGetRun))
		rt.Get("/runs/{id}/results", r.wrap(r.handleRunResults))

		rt.Post("/runs/{id}/competitors", r.wrap(r.handleAnalyzeCompetitors))
		rt.Get("/runs/{id}/competitors", r.wrap(r.handleListCompetitors))

		rt.Get("/credits", r.wrap(r.handleCredits))
		rt.Post("/coach/chat", r.wrap(r.handleCoachChat))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain and guard errors onto HTTP statuses in one place.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, approuns.ErrInvalidRequest),
			errors.Is(err, appbrands.ErrInvalid),
			errors.Is(err, appcoach.ErrInvalid):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, approuns.ErrNotOwned),
			errors.Is(err, appbrands.ErrNotOwned),
			errors.Is(err, appcoach.ErrNotOwned):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, approuns.ErrRunInProgress):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, approuns.ErrRateLimited),
			errors.Is(err, domai.ErrQuotaExceeded),
			errors.Is(err, creditsdomain.ErrNoAllowance):
			w.Header().Set("Retry-After", "3600")
			writeError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, compdomain.ErrBadModelJSON):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/{tenant}/brands
func (r *Router) handleCreateBrand(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return errors.Join(appbrands.ErrInvalid, err)
	}

	var body struct {
		Name  string `json:"name"`
		Topic string `json:"topic"`
		Plan  string `json:"plan"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errors.Join(appbrands.ErrInvalid, err)
	}

	b, err := r.brandsSvc.Create(req.Context(), appbrands.CreateCommand{
		TenantID: tenant,
		Name:     middleware.SanitizeString(body.Name),
		Topic:    middleware.SanitizeString(body.Topic),
		Plan:     body.Plan,
	})
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, b)
}

// GET /v1/{tenant}/brands?limit=20
func (r *Router) handleListBrands(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.brandsSvc.List(req.Context(), tenant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/brands/{id}
func (r *Router) handleGetBrand(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	b, err := r.brandsSvc.Get(req.Context(), tenant, brandsdomain.BrandID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, b)
}

// GET /v1/{tenant}/brands/{id}/insights
func (r *Router) handleInsights(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	// Ownership check rides on the brand lookup.
	if _, err := r.brandsSvc.Get(req.Context(), tenant, brandsdomain.BrandID(id)); err != nil {
		return err
	}
	list, err := r.runsSvc.InsightsByBrand(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// POST /v1/{tenant}/runs
// Body: {"brandId": "<id>"}
// Runs the whole analysis synchronously: the response carries the final
// score. Guard failures map to 400/403/409/429 before any run row exists.
func (r *Router) handleTriggerRun(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	var body struct {
		BrandID string `json:"brandId"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errors.Join(approuns.ErrInvalidRequest, err)
	}

	result, err := r.runsSvc.Trigger(req.Context(), approuns.TriggerCommand{
		TenantID: tenant,
		BrandID:  body.BrandID,
	})
	if err != nil {
		middleware.IncrementRunsFailed()
		return err
	}

	middleware.IncrementRuns()
	return writeJSON(w, result)
}

// GET /v1/{tenant}/runs/latest?brand_id=&limit=20
func (r *Router) handleLatestRuns(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	brandID := req.URL.Query().Get("brand_id")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.runsSvc.Latest(req.Context(), tenant, brandID, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/runs/{id}
func (r *Router) handleGetRun(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRunID(id); err != nil {
		return errors.Join(approuns.ErrInvalidRequest, err)
	}

	run, err := r.runsSvc.Get(req.Context(), tenant, runsdomain.RunID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, run)
}

// GET /v1/{tenant}/runs/{id}/results
func (r *Router) handleRunResults(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	list, err := r.runsSvc.ResultsByRun(req.Context(), tenant, runsdomain.RunID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// POST /v1/{tenant}/runs/{id}/competitors
func (r *Router) handleAnalyzeCompetitors(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	list, err := r.competitorsSvc.Analyze(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/runs/{id}/competitors
func (r *Router) handleListCompetitors(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	list, err := r.competitorsSvc.ListByRun(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/credits?plan=free
func (r *Router) handleCredits(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	plan := visibility.Plan(req.URL.Query().Get("plan"))
	if plan != visibility.PlanPro {
		plan = visibility.PlanFree
	}

	period, err := r.creditsSvc.Ensure(req.Context(), tenant, plan)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]interface{}{
		"period":    period,
		"remaining": period.Remaining(),
	})
}

// POST /v1/{tenant}/coach/chat
// Body: {"brandId": "<id>", "message": "<text>"}
func (r *Router) handleCoachChat(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	var body struct {
		BrandID string `json:"brandId"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errors.Join(appcoach.ErrInvalid, err)
	}

	reply, err := r.coachSvc.Chat(req.Context(), appcoach.ChatCommand{
		TenantID: tenant,
		BrandID:  body.BrandID,
		Message:  body.Message,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, reply)
}
