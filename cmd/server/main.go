package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/slabquote/internal/config"
	"github.com/Simplici0/slabquote/internal/db"
	"github.com/Simplici0/slabquote/internal/inventory"
	"github.com/Simplici0/slabquote/internal/logger"
	"github.com/Simplici0/slabquote/internal/metrics"
	"github.com/Simplici0/slabquote/internal/migrations"
	"github.com/Simplici0/slabquote/internal/pricing"
	"github.com/Simplici0/slabquote/internal/quoting"
	"github.com/Simplici0/slabquote/internal/seed"
	"github.com/Simplici0/slabquote/internal/store"
)

type server struct {
	log     *zap.Logger
	store   *store.Store
	quotes  *quoting.Service
	reader  *inventory.Reader
	fetcher *inventory.Fetcher
	metrics *metrics.Metrics
	sources []string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.LogLevel, cfg.LoggerFormat())
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		return err
	}

	var policies []pricing.Policy
	if cfg.PolicyFile != "" {
		if policies, err = config.LoadPolicies(cfg.PolicyFile); err != nil {
			return err
		}
	}
	stats, err := seed.Run(database, seed.Config{Policies: policies})
	if err != nil {
		return err
	}
	log.Info("policies seeded", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	st := store.New(database)
	if _, err := st.GetPolicy(context.Background(), cfg.DefaultPolicy); err != nil {
		return err
	}

	srv := &server{
		log:   log,
		store: st,
		quotes: quoting.NewService(st, quoting.Options{
			DefaultPolicy: cfg.DefaultPolicy,
			MinAreaSqFt:   cfg.MinAreaSqFt,
		}),
		reader:  inventory.NewReader(),
		fetcher: inventory.NewFetcher(&http.Client{Timeout: cfg.FetchTimeout}, log, cfg.FetchMaxElapsed),
		metrics: metrics.New(cfg.MetricsPrefix),
		sources: cfg.InventorySources,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(srv.sources) > 0 {
		if _, err := srv.refreshInventory(ctx); err != nil {
			log.Warn("initial inventory refresh failed", zap.Error(err))
		}
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("db_path", cfg.DBPath))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestID)
	r.Use(logger.Middleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Get("/policies", s.handlePoliciesList)
	r.Get("/policies/{name}", s.handlePolicyGet)
	r.Put("/policies/{name}", s.handlePolicyPut)

	r.Post("/price", s.handlePrice)

	r.Get("/inventory", s.handleInventoryList)
	r.Post("/inventory", s.handleInventoryUpload)
	r.Post("/inventory/refresh", s.handleInventoryRefresh)
	r.Get("/inventory/export.xlsx", s.handleInventoryExport)

	r.Get("/quotes", s.handleQuotesList)
	r.Post("/quotes", s.handleQuoteCreate)
	r.Get("/quotes/{id}", s.handleQuoteDetail)
	r.Get("/quotes/{id}/text", s.handleQuoteText)
	r.Get("/quotes/{id}/csv", s.handleQuoteCSV)
	r.Get("/quotes/{id}/xlsx", s.handleQuoteXLSX)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
