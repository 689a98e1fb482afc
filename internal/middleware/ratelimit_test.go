package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	_, rdb := newMiniRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "post", "login:alice", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "post", "login:alice", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = CheckRateLimit(ctx, rdb, "post", "login:bob", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_WindowExpiry(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	mr, rdb := newMiniRedis(t)
	ctx := context.Background()

	allowed, _ := CheckRateLimit(ctx, rdb, "post", "ip:1", 1, time.Minute)
	assert.True(t, allowed)
	allowed, _ = CheckRateLimit(ctx, rdb, "post", "ip:1", 1, time.Minute)
	assert.False(t, allowed)

	mr.FastForward(2 * time.Minute)

	allowed, _ = CheckRateLimit(ctx, rdb, "post", "ip:1", 1, time.Minute)
	assert.True(t, allowed)
}

func TestCheckRateLimit_Bypass(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	allowed, err := CheckRateLimit(context.Background(), nil, "post", "1", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed)

	t.Setenv("APP_ENV", "test")
	allowed, err = CheckRateLimit(context.Background(), nil, "post", "1", 0, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_NilRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	allowed, err := CheckRateLimit(context.Background(), nil, "post", "1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestRateLimitWithPolicy(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	t.Run("fail closed without redis", func(t *testing.T) {
		app := fiber.New()
		app.Get("/", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("fail open without redis", func(t *testing.T) {
		app := fiber.New()
		app.Get("/", RateLimit(nil, 1, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("limit reached", func(t *testing.T) {
		_, rdb := newMiniRedis(t)
		app := fiber.New()
		app.Get("/", RateLimit(rdb, 1, time.Minute, "home"), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	})
}
