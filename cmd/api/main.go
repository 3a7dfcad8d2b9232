// Package main is the entry point for the itinerary API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/itinerary/backend/internal/catalog"
	"github.com/pkordes/itinerary/backend/internal/config"
	"github.com/pkordes/itinerary/backend/internal/domain"
	"github.com/pkordes/itinerary/backend/internal/handler"
	"github.com/pkordes/itinerary/backend/internal/metrics"
	"github.com/pkordes/itinerary/backend/internal/middleware"
	"github.com/pkordes/itinerary/backend/internal/publisher"
	"github.com/pkordes/itinerary/backend/internal/render"
	"github.com/pkordes/itinerary/backend/internal/repo"
	"github.com/pkordes/itinerary/backend/internal/service"
	"github.com/pkordes/itinerary/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Catalog ----------------------------------------------------------
	// Postgres is optional: without DATABASE_URL the built-in catalog is used.
	cat := catalog.Default()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		cat, err = loadCatalog(ctx, pool)
		if err != nil {
			slog.Error("failed to load catalog", "error", err)
			os.Exit(1)
		}
		slog.Info("catalog loaded from database", "destinations", len(cat.DestinationNames()))
	} else {
		slog.Info("DATABASE_URL not set, using built-in catalog")
	}

	// --- Metrics and notifications ----------------------------------------
	collector := metrics.NewCollector()

	var notifier service.Notifier
	if cfg.NATSURL != "" {
		nn, err := publisher.NewNATSNotifier(cfg.NATSURL, cfg.NATSSubjectPrefix, collector, logger)
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nn.Close()
		notifier = nn
		slog.Info("publishing waypoint changes", "url", cfg.NATSURL, "prefix", cfg.NATSSubjectPrefix)
	}

	// --- Services ---------------------------------------------------------
	snapshot := render.NewSnapshot()
	store := repo.NewWaypointRepo()

	trips := service.NewTripService(service.TripDeps{
		Store:       store,
		Catalog:     cat,
		Surface:     snapshot,
		Clock:       service.SystemClock{},
		Scheduler:   service.TimerScheduler{},
		Notifier:    notifier,
		Metrics:     collector,
		Logger:      logger,
		Location:    cfg.Location,
		CommitDelay: cfg.CommitDelay,
	})
	// An empty load mounts the initial, empty board.
	if err := trips.Load(ctx, []domain.Waypoint{}); err != nil {
		slog.Error("failed to render initial board", "error", err)
		os.Exit(1)
	}
	exports := service.NewExportService(store, cfg.Location)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", collector.Handler())
	handler.HandlerFromMux(handler.NewServer(trips, snapshot, exports), r)

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "commit_delay", cfg.CommitDelay.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// loadCatalog pings the database, applies pending migrations, and returns the
// stored catalog, seeding it with the built-in data on first start.
func loadCatalog(ctx context.Context, pool *pgxpool.Pool) (domain.Catalog, error) {
	if err := pool.Ping(ctx); err != nil {
		return domain.Catalog{}, fmt.Errorf("ping: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("migrations applied", "count", len(results))

	return catalog.Ensure(ctx, repo.NewCatalogRepo(pool))
}
