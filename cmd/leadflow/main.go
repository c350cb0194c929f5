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

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/leadflow/internal/adapter/fsm"
	oteladapter "github.com/neomorfeo/leadflow/internal/adapter/otel"
	riveradapter "github.com/neomorfeo/leadflow/internal/adapter/river"
	"github.com/neomorfeo/leadflow/internal/adapter/settings"
	"github.com/neomorfeo/leadflow/internal/adapter/sqlite"
	"github.com/neomorfeo/leadflow/internal/app"
	"github.com/neomorfeo/leadflow/internal/config"
	"github.com/neomorfeo/leadflow/internal/domain"
	"github.com/neomorfeo/leadflow/internal/logger"

	handler "github.com/neomorfeo/leadflow/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("leadflow exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	otelCfg := oteladapter.ConfigFromEnv()
	providers, err := oteladapter.Setup(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := oteladapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	riverClient, err := riveradapter.Setup(ctx, db, cfg.River.MaxWorkers)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	// River gets its own context so queued audit jobs drain through Stop
	// instead of being cut off by the signal.
	if err := riverClient.Start(context.Background()); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			log.Error("river shutdown", "error", err)
		}
	}()

	leads, err := oteladapter.NewTracingLeadRepository(store.Leads())
	if err != nil {
		return fmt.Errorf("lead metrics: %w", err)
	}
	partners := oteladapter.NewTracingPartnerRepository(store.Partners())
	audit := oteladapter.NewTracingAuditSink(riveradapter.NewAuditSink(riverClient))
	reader := oteladapter.NewTracingSettingsReader(settingsReader(cfg.SettingsFile))

	// --- Application ---
	svc := app.NewWorkflow(leads, partners, reader, audit, fsm.New(), app.WithLogger(log))

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(otelCfg.ServiceName, otelchi.WithChiRoutes(router)))
	router.Use(handler.ActorMiddleware)
	router.Use(requestLogger(log))

	api := humachi.New(router, huma.DefaultConfig("leadflow", otelCfg.ServiceVersion))
	handler.Register(api, svc)

	// --- Server ---
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("leadflow listening", "addr", srv.Addr, "docs", "http://localhost"+srv.Addr+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("stopped")
	return nil
}

// settingsReader reads admin settings from a YAML file, or falls back to the
// built-in quotas when no file is configured.
func settingsReader(path string) domain.SettingsReader {
	if path == "" {
		return settings.Static{}
	}
	return settings.NewFileReader(path)
}

// requestLogger logs one line per request through slog.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Enrich(r.Context(), log).InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
