package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playhub/arena/internal/app"
	"github.com/playhub/arena/internal/auth"
	"github.com/playhub/arena/internal/guard"
	"github.com/playhub/arena/internal/infra"
	"github.com/playhub/arena/internal/ledger"
	"github.com/playhub/arena/internal/projection"
	"github.com/playhub/arena/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger = cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if cfg.RunMigrations {
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Cache and login limiter: Redis when configured, in-process otherwise
	var (
		cache   projection.Store = projection.NewInMemoryStore()
		limiter guard.Limiter    = guard.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	)
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		cache = projection.NewRedisStore(rdb)
		limiter = guard.NewRedisRateLimiter(rdb, "ratelimit:login", cfg.LoginRateLimit, cfg.LoginRateWindow, logger)
		logger.Info("connected to redis")
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTSessionExpiry)

	deps := app.RouterDeps{
		DB:               pool,
		Health:           pool,
		JWTMgr:           jwtMgr,
		Logger:           logger,
		Cache:            cache,
		LoginLimiter:     limiter,
		TrustedProxyHops: cfg.TrustedProxyHops,
		CookieSecure:     cfg.CookieSecure,
		CORSOrigins:      cfg.CORSOrigins(),
	}
	svcs := app.NewServices(deps)

	if _, err := svcs.Auth.EnsureBootstrapAdmin(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	// Background reconciliation
	reconciler := ledger.NewReconciler(repository.NewWalletRepository(), pool, logger)
	sched, err := infra.NewScheduler(ctx, logger, infra.Job{
		Name:     "wallet-reconcile",
		Interval: cfg.ReconcileInterval,
		Run:      reconciler.Job,
	})
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	sched.Start()
	defer func() {
		if err := sched.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", "error", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.NewRouter(deps, svcs),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
