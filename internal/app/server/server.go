package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"carepay/internal/db"
	"carepay/internal/domain/award"
	"carepay/internal/domain/leave"
	"carepay/internal/domain/payroll"
	"carepay/internal/domain/tax"
	"carepay/internal/platform/config"
	"carepay/internal/platform/jobs"
	"carepay/internal/platform/metrics"
	payrollhandler "carepay/internal/transport/http/handlers/payroll"
	"carepay/internal/transport/http/middleware"
	"carepay/migrations"
)

// Run wires the engine together and serves until SIGINT/SIGTERM.
func Run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrations.Files); err != nil {
			return err
		}
	}

	rules, err := config.LoadRuleset(cfg.RulesetPath)
	if err != nil {
		return err
	}
	slog.Info("ruleset loaded", "version", rules.Version, "taxYear", rules.Tax.TaxYear)

	collector := metrics.New()

	taxStore := tax.NewStore(pool, rules.Tax.Defaults)
	balances := leave.NewStore(pool)
	service := payroll.NewService(
		payroll.NewStore(pool),
		balances,
		tax.NewCalculator(rules.Tax, taxStore),
		award.NewCalculator(rules.Award),
		leave.NewCalculator(rules.Leave),
		rules.Payroll,
	)

	jobService := jobs.New(pool, cfg, service, collector)
	jobService.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(1 << 20))
	router.Use(middleware.Auth(cfg.JWTSecret))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := writeSnapshot(w, collector); err != nil {
				slog.Warn("metrics write failed", "err", err)
			}
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		payrollhandler.NewHandler(service, jobService, collector).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func writeSnapshot(w http.ResponseWriter, collector *metrics.Collector) error {
	return json.NewEncoder(w).Encode(collector.Snapshot())
}
