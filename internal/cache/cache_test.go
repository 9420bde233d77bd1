package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/kiranshivaraju/todoapi/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis spins up a Redis container and returns a connected RedisCache.
func setupRedis(t *testing.T) *cache.RedisCache {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rc, err := cache.NewRedisCache("redis://" + host + ":" + port.Port())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	return rc
}

func setupMemory(t *testing.T) *cache.MemoryCache {
	t.Helper()
	mc, err := cache.NewMemoryCache(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mc.Close() })
	return mc
}

// backends returns every Cache implementation the shared tests run against.
func backends(t *testing.T) map[string]func(t *testing.T) cache.Cache {
	t.Helper()
	b := map[string]func(t *testing.T) cache.Cache{
		"memory": func(t *testing.T) cache.Cache { return setupMemory(t) },
	}
	if !testing.Short() {
		b["redis"] = func(t *testing.T) cache.Cache { return setupRedis(t) }
	}
	return b
}

func TestPing(t *testing.T) {
	for name, newCache := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := newCache(t)
			assert.NoError(t, c.Ping(context.Background()))
		})
	}
}

func TestSetGet_Roundtrip(t *testing.T) {
	for name, newCache := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := newCache(t)
			ctx := context.Background()

			require.NoError(t, c.Set(ctx, "test:key", []byte("hello"), 10*time.Second))

			val, found, err := c.Get(ctx, "test:key")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []byte("hello"), val)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	for name, newCache := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := newCache(t)

			val, found, err := c.Get(context.Background(), "nonexistent:key")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, val)
		})
	}
}

func TestSet_TTLExpiry(t *testing.T) {
	for name, newCache := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := newCache(t)
			ctx := context.Background()

			require.NoError(t, c.Set(ctx, "expiry:key", []byte("temp"), 1*time.Second))

			_, found, err := c.Get(ctx, "expiry:key")
			require.NoError(t, err)
			assert.True(t, found)

			time.Sleep(2500 * time.Millisecond)

			_, found, err = c.Get(ctx, "expiry:key")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, newCache := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := newCache(t)
			ctx := context.Background()

			require.NoError(t, c.Set(ctx, "del:key", []byte("bye"), 10*time.Second))
			require.NoError(t, c.Delete(ctx, "del:key"))

			_, found, err := c.Get(ctx, "del:key")
			require.NoError(t, err)
			assert.False(t, found)

			assert.NoError(t, c.Delete(ctx, "does:not:exist"))
		})
	}
}

func TestCompanyKey(t *testing.T) {
	assert.Equal(t, "auth:company:abc123", cache.CompanyKey("abc123"))
}
