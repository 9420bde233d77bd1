// Package main is the entrypoint for the todo API server.
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

	"github.com/kiranshivaraju/todoapi/internal/api"
	"github.com/kiranshivaraju/todoapi/internal/api/handler"
	mw "github.com/kiranshivaraju/todoapi/internal/api/middleware"
	"github.com/kiranshivaraju/todoapi/internal/auth"
	"github.com/kiranshivaraju/todoapi/internal/cache"
	"github.com/kiranshivaraju/todoapi/internal/config"
	"github.com/kiranshivaraju/todoapi/internal/metrics"
	"github.com/kiranshivaraju/todoapi/internal/ratelimit"
	"github.com/kiranshivaraju/todoapi/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 30 * time.Second
	// memoryCacheBytes bounds the in-process credential cache.
	memoryCacheBytes = 16 << 20
)

func main() {
	setLogger(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func setLogger(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

func run(ctx context.Context) error {
	// 1. Load config, fail fast on invalid config
	if err := config.LoadEnvFiles(); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setLogger(cfg.Server.LogLevel)
	slog.Info("config loaded", "env", cfg.Server.Env, "store_backend", cfg.Store.Backend)

	// 2. Data store
	st, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. Credential cache
	c, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	// 4. Rate limiter and metrics
	limiter := ratelimit.New(cfg.RateLimit.Classes())
	m := metrics.New()
	m.TrackEntries(limiter.Len)

	if cfg.Auth.AdminKey == "" {
		slog.Warn("ADMIN_API_KEY is not set, admin routes will reject every request")
	}

	// 5. Build router with dependencies
	router := newRouter(cfg, st, c, limiter, m)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serve(ctx, srv, limiter, cfg.RateLimit.SweepInterval)
}

// newStore opens the configured backend. The returned func releases it.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.Store.Backend == config.BackendMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("database connected")

	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	return store.NewPostgresStore(pool), pool.Close, nil
}

// newCache returns Redis when REDIS_URL is set and an in-process cache
// otherwise.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.Redis.URL == "" {
		mc, err := cache.NewMemoryCache(memoryCacheBytes)
		if err != nil {
			return nil, fmt.Errorf("create memory cache: %w", err)
		}
		return mc, nil
	}

	rc, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("create redis cache: %w", err)
	}
	if err := rc.Ping(ctx); err != nil {
		rc.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")
	return rc, nil
}

func newRouter(cfg *config.Config, st store.Store, c cache.Cache, l *ratelimit.Limiter, m *metrics.Metrics) http.Handler {
	authenticator := auth.NewAuthenticator(st, c, cfg.Auth.CacheTTL)

	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(authenticator, cfg.Auth.AdminKey, m),
		RateLimit: mw.NewRateLimit(l, m),
		Metrics:   m,

		StatusHandler: handler.NewStatusHandler(st, c, l),
		DocsHandler:   handler.NewDocsHandler(l),

		ListTasks:  handler.NewListTasksHandler(st),
		CreateTask: handler.NewCreateTaskHandler(st),
		GetTask:    handler.NewGetTaskHandler(st),
		UpdateTask: handler.NewUpdateTaskHandler(st),
		DeleteTask: handler.NewDeleteTaskHandler(st),

		CreateCompany: handler.NewCreateCompanyHandler(st),
		ListCompanies: handler.NewListCompaniesHandler(st),
	})
}

// serve runs the HTTP server and the limiter sweeper until ctx is done or
// either fails, then drains connections.
func serve(ctx context.Context, srv *http.Server, l *ratelimit.Limiter, sweepInterval time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return l.Run(gctx, sweepInterval)
	})

	g.Go(func() error {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, draining connections...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
