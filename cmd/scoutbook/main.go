package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/scoutbook/internal/adapters/http/api"
	"github.com/okian/scoutbook/internal/adapters/http/idempotency"
	"github.com/okian/scoutbook/internal/adapters/http/swagger"
	service "github.com/okian/scoutbook/internal/app"
	"github.com/okian/scoutbook/internal/config"
	"github.com/okian/scoutbook/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second

	// reconcileInterval paces the retry of promotions whose write failed
	// after their report was stored.
	reconcileInterval = time.Minute
	// rosterMetricsInterval refreshes the players-by-state gauges.
	rosterMetricsInterval = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "scoutbook stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, err := service.FromConfig(ctx, cfg, log.Named("service"))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error(ctx, "service close failed", logger.Error(err))
		}
	}()

	go startReconciler(ctx, svc, log)
	go startRosterMetricsUpdater(ctx, svc, log)

	keys := idempotency.New(
		idempotency.WithMaxKeys(cfg.IdempotencyKeys),
		idempotency.WithTTL(cfg.IdempotencyTTL()),
	)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, log, keys),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("db_driver", cfg.DBDriver),
			logger.Any("roster", cfg.Scouts()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newMux registers the docs and business routes.
func newMux(ctx context.Context, svc *service.Service, log logger.Logger, keys idempotency.Keys) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithLogger(log.Named("api")),
		api.WithIdempotencyKeys(keys),
	).Register(mux)
	return mux
}

// startReconciler retries pending promotions until ctx is done.
func startReconciler(ctx context.Context, svc *service.Service, log logger.Logger) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		if _, err := svc.ReconcileBookmarks(ctx); err != nil && ctx.Err() == nil {
			log.Warn(ctx, "bookmark reconciliation failed", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// startRosterMetricsUpdater keeps the roster gauges current.
func startRosterMetricsUpdater(ctx context.Context, svc *service.Service, log logger.Logger) {
	ticker := time.NewTicker(rosterMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.Dashboard(ctx); err != nil && ctx.Err() == nil {
				log.Warn(ctx, "roster metrics update failed", logger.Error(err))
			}
		}
	}
}
