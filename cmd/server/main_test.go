package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kiranshivaraju/todoapi/internal/cache"
	"github.com/kiranshivaraju/todoapi/internal/config"
	"github.com/kiranshivaraju/todoapi/internal/metrics"
	"github.com/kiranshivaraju/todoapi/internal/ratelimit"
	"github.com/kiranshivaraju/todoapi/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── run() config validation tests ──────────────────────────────────────────

func TestRun_FailsOnMissingConfig(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRun_FailsOnInvalidDatabaseURL(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "not-a-valid-url")
	t.Setenv("REDIS_URL", "")

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect database")
}

func TestRun_FailsOnUnreachableRedis(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

// ─── wiring tests ───────────────────────────────────────────────────────────

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ADMIN_API_KEY", "admin-secret")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNewStore_Memory(t *testing.T) {
	cfg := memoryConfig(t)

	st, closeStore, err := newStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &store.MemoryStore{}, st)
}

func TestNewCache_DefaultsToMemory(t *testing.T) {
	cfg := memoryConfig(t)

	c, err := newCache(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &cache.MemoryCache{}, c)
}

func TestNewRouter_ServesCompanyAndTaskFlow(t *testing.T) {
	cfg := memoryConfig(t)
	st, closeStore, err := newStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()
	c, err := newCache(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	router := newRouter(cfg, st, c, ratelimit.New(cfg.RateLimit.Classes()), metrics.New())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies", strings.NewReader(`{"name":"Acme"}`))
	req.Header.Set("x-admin-key", "admin-secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			APIKey string `json:"api_key"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Two reads: the second is served from the credential cache.
	for i := 0; i < 2; i++ {
		req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
		req.Header.Set("x-api-key", created.Data.APIKey)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// ─── serve lifecycle ────────────────────────────────────────────────────────

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestServe_StopsOnCancel(t *testing.T) {
	addr := freeAddr(t)
	srv := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ratelimit.New(nil), 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}
	err = serve(context.Background(), srv, ratelimit.New(nil), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}

// ─── shutdown timeout constant test ─────────────────────────────────────────

func TestShutdownTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, shutdownTimeout)
}
