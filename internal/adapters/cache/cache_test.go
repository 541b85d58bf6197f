package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/mail-insight/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// exerciseCache runs the behaviour every ResponseCache backend shares
func exerciseCache(t *testing.T, c core.ResponseCache) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	_, err := c.Get(ctx, "absent")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	live := &core.CacheEntry{
		Key:       "live",
		Response:  `[{"summary":"ok"}]`,
		Model:     "gemini-2.5-flash",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, c.Set(ctx, live))

	got, err := c.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, live.Response, got.Response)
	assert.Equal(t, live.Model, got.Model)
	assert.True(t, live.ExpiresAt.Equal(got.ExpiresAt))

	replacement := *live
	replacement.Response = "[]"
	require.NoError(t, c.Set(ctx, &replacement))
	got, err = c.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "[]", got.Response)

	require.NoError(t, c.Delete(ctx, "live"))
	_, err = c.Get(ctx, "live")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Cleanup(ctx))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(zaptest.NewLogger(t), time.Hour)
	defer c.Stop()

	exerciseCache(t, c)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(zaptest.NewLogger(t), 0)
	defer c.Stop()
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, &core.CacheEntry{Key: "old", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, c.Set(ctx, &core.CacheEntry{Key: "new", ExpiresAt: now.Add(time.Minute)}))

	_, err := c.Get(ctx, "old")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Cleanup(ctx))
	assert.Equal(t, 1, c.Len())

	_, err = c.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestMemoryCacheCleanupTask(t *testing.T) {
	c := NewMemoryCache(zaptest.NewLogger(t), 5*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &core.CacheEntry{Key: "old", ExpiresAt: time.Now().Add(-time.Second)}))
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)

	c.Stop()
	c.Stop()
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zaptest.NewLogger(t), time.Hour)
	require.NoError(t, err)
	defer c.Stop()

	exerciseCache(t, c)
}

func TestSQLiteCacheCleanup(t *testing.T) {
	c, err := NewSQLiteCache(":memory:", zaptest.NewLogger(t), 0)
	require.NoError(t, err)
	defer c.Stop()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, c.Set(ctx, &core.CacheEntry{Key: "old", CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, c.Set(ctx, &core.CacheEntry{Key: "new", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	_, err = c.Get(ctx, "old")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Cleanup(ctx))
	var remaining int
	require.NoError(t, c.db.Get(&remaining, "SELECT COUNT(*) FROM response_cache"))
	assert.Equal(t, 1, remaining)
}

func TestMySQLCache(t *testing.T) {
	dsn := os.Getenv("MAIL_INSIGHT_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("MAIL_INSIGHT_TEST_MYSQL_DSN not set")
	}
	c, err := NewMySQLCache(dsn, zaptest.NewLogger(t), time.Hour)
	require.NoError(t, err)
	defer c.Stop()

	exerciseCache(t, c)
}

func TestPostgresCache(t *testing.T) {
	dsn := os.Getenv("MAIL_INSIGHT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MAIL_INSIGHT_TEST_POSTGRES_DSN not set")
	}
	c, err := NewPostgresCache(context.Background(), dsn, zaptest.NewLogger(t), time.Hour)
	require.NoError(t, err)
	defer c.Stop()

	exerciseCache(t, c)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("MAIL_INSIGHT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MAIL_INSIGHT_TEST_REDIS_ADDR not set")
	}
	c, err := NewRedisCache(context.Background(), addr, "", 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer c.Stop()

	exerciseCache(t, c)
}

func TestRedisKeyPrefix(t *testing.T) {
	assert.Equal(t, "mail-insight:response:abc", redisKey("abc"))
}
