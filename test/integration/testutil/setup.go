//go:build integration

package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playhub/arena/internal/app"
	"github.com/playhub/arena/internal/auth"
	"github.com/playhub/arena/internal/guard"
	"github.com/playhub/arena/internal/infra"
	"github.com/playhub/arena/internal/projection"
)

const (
	TestJWTSecret = "integration-test-secret-at-least-32-chars"
	TestDBName    = "arena_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server *httptest.Server
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Cache  *projection.InMemoryStore
	t      *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func dsn(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("PGUSER", "arena"), envOr("PGPASSWORD", "arena"),
		envOr("PGHOST", "localhost"), envOr("PGPORT", "5432"), database)
}

func testDSN() string { return dsn(TestDBName) }

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to the main database to create the test database
	bPool, err := pgxpool.New(ctx, dsn(envOr("PGDATABASE", "arena")))
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		if _, err := bPool.Exec(ctx, "CREATE DATABASE "+TestDBName); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}
		if err := infra.RunMigrations(testDSN(), quietLogger()); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(testDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 20
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Option adjusts the router dependencies of a TestEnv.
type Option func(*app.RouterDeps)

// WithLoginLimit throttles POST /api/login to limit attempts per minute.
func WithLoginLimit(limit int) Option {
	return func(d *app.RouterDeps) {
		d.LoginLimiter = guard.NewRateLimiter(limit, time.Minute)
	}
}

// NewTestEnv creates a test environment with an httptest.Server backed by the real router and test DB.
func NewTestEnv(t *testing.T, opts ...Option) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)
	jwtMgr := auth.NewJWTManager(TestJWTSecret, 24*time.Hour)
	cache := projection.NewInMemoryStore()

	deps := app.RouterDeps{
		DB:          pool,
		Health:      pool,
		JWTMgr:      jwtMgr,
		Logger:      quietLogger(),
		Cache:       cache,
		CORSOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	// Clean before test to ensure isolation
	env := &TestEnv{Pool: pool, JWTMgr: jwtMgr, Cache: cache, t: t}
	env.CleanAll()

	svcs := app.NewServices(deps)
	if _, err := svcs.Auth.EnsureBootstrapAdmin(context.Background(), AdminUsername, "admin@example.com", AdminPassword); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	env.Server = httptest.NewServer(app.NewRouter(deps, svcs))

	t.Cleanup(func() {
		env.Server.Close()
		env.CleanAll()
	})
	return env
}
