package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/brandlens/brandlens/internal/application"
	appbrands "github.com/brandlens/brandlens/internal/application/brands"
	appcoach "github.com/brandlens/brandlens/internal/application/coach"
	appcompetitors "github.com/brandlens/brandlens/internal/application/competitors"
	appcredits "github.com/brandlens/brandlens/internal/application/credits"
	approuns "github.com/brandlens/brandlens/internal/application/runs"
	"github.com/brandlens/brandlens/internal/config"
	brandsdomain "github.com/brandlens/brandlens/internal/domain/brands"
	compdomain "github.com/brandlens/brandlens/internal/domain/competitors"
	creditsdomain "github.com/brandlens/brandlens/internal/domain/credits"
	runsdomain "github.com/brandlens/brandlens/internal/domain/runs"
	"github.com/brandlens/brandlens/internal/domain/visibility"
	openaiclient "github.com/brandlens/brandlens/internal/infra/ai/openai"
	"github.com/brandlens/brandlens/internal/infra/ai/perplexity"
	mysqlp "github.com/brandlens/brandlens/internal/infra/db/mysql"
	postgresp "github.com/brandlens/brandlens/internal/infra/db/postgres"
	"github.com/brandlens/brandlens/internal/infra/httpserver"
	minioStore "github.com/brandlens/brandlens/internal/infra/storage"
	"github.com/brandlens/brandlens/internal/middleware"
)

type repos struct {
	brands      brandsdomain.Repository
	runs        runsdomain.Repository
	results     runsdomain.ResultRepository
	insights    runsdomain.InsightRepository
	competitors compdomain.Repository
	credits     creditsdomain.Repository
}

func main() {
	// .env is optional; real deployments inject env vars directly.
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	db, rp, err := connect(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect error: %v", err)
	}
	defer db.Close()

	// Report archive is optional: without MinIO config, runs simply skip it.
	var reports runsdomain.ReportArchive
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		reports = store
	}

	search := perplexity.NewClient(cfg.AI.PerplexityAPIKey, cfg.AI.PerplexityModel)
	chat := openaiclient.NewClient(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel)
	clock := application.SystemClock{}

	brandsSvc := &appbrands.Service{Repo: rp.brands, Clock: clock}
	runsSvc := &approuns.Service{
		Brands:   rp.brands,
		Runs:     rp.runs,
		Results:  rp.results,
		Insights: rp.insights,
		Reports:  reports,
		Search:   search,
		Matcher:  visibility.SubstringMatcher{},
		Clock:    clock,
	}
	competitorsSvc := &appcompetitors.Service{
		Results: rp.results,
		Repo:    rp.competitors,
		Chat:    chat,
		Clock:   clock,
	}
	creditsSvc := &appcredits.Service{
		Repo:              rp.credits,
		Clock:             clock,
		FreeMonthlyTokens: cfg.Credits.FreeMonthlyTokens,
		ProMonthlyTokens:  cfg.Credits.ProMonthlyTokens,
	}
	coachSvc := &appcoach.Service{
		Brands:  rp.brands,
		Model:   chat,
		Credits: creditsSvc,
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.APIKeys))
		mux.Use(middleware.RequireTenantMatch)
	}
	mux.Use(middleware.RateLimitMiddleware(30, 5))

	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Mount("/", httpserver.NewRouter(brandsSvc, runsSvc, competitorsSvc, creditsSvc, coachSvc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
		// A synchronous 20-query run takes a while; keep write generous.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// connect opens the configured database and builds the matching repo set.
func connect(ctx context.Context, cfg *config.Config) (*sql.DB, repos, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, repos{}, err
		}
		return db, repos{
			brands:      postgresp.NewBrandRepository(db),
			runs:        postgresp.NewRunRepository(db),
			results:     postgresp.NewResultRepository(db),
			insights:    postgresp.NewInsightRepository(db),
			competitors: postgresp.NewCompetitorRepository(db),
			credits:     postgresp.NewCreditRepository(db),
		}, nil
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, repos{}, err
		}
		return db, repos{
			brands:      mysqlp.NewBrandRepository(db),
			runs:        mysqlp.NewRunRepository(db),
			results:     mysqlp.NewResultRepository(db),
			insights:    mysqlp.NewInsightRepository(db),
			competitors: mysqlp.NewCompetitorRepository(db),
			credits:     mysqlp.NewCreditRepository(db),
		}, nil
	}
}
