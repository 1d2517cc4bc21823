package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	pkgcache "github.com/amirasaad/bank/pkg/cache"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ pkgcache.QuoteCache    = (*MemoryCache[provider.Quote])(nil)
	_ pkgcache.QuoteCache    = (*RedisCache[provider.Quote])(nil)
	_ pkgcache.ResponseStore = (*MemoryCache[pkgcache.StoredResponse])(nil)
	_ pkgcache.ResponseStore = (*RedisCache[pkgcache.StoredResponse])(nil)
)

func quote() *provider.Quote {
	return &provider.Quote{
		Symbols:   "USD_EUR",
		Price:     decimal.RequireFromString("0.92"),
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache[provider.Quote]()
	now := time.Now()
	c.now = func() time.Time { return now }

	got, err := c.Get(ctx, "USD_EUR")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "USD_EUR", quote(), time.Minute))
	got, err = c.Get(ctx, "USD_EUR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("0.92")))

	now = now.Add(2 * time.Minute)
	got, err = c.Get(ctx, "USD_EUR")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "k", quote(), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	got, _ = c.Get(ctx, "k")
	assert.Nil(t, got)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisCache[provider.Quote](client, "rate:", slog.New(slog.NewTextHandler(io.Discard, nil)))

	got, err := c.Get(ctx, "USD_EUR")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "USD_EUR", quote(), time.Minute))
	assert.True(t, mr.Exists("rate:USD_EUR"))

	got, err = c.Get(ctx, "USD_EUR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "USD_EUR", got.Symbols)
	assert.True(t, got.Timestamp.Equal(quote().Timestamp))

	mr.FastForward(2 * time.Minute)
	got, err = c.Get(ctx, "USD_EUR")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "x", quote(), time.Minute))
	require.NoError(t, c.Delete(ctx, "x"))
	assert.False(t, mr.Exists("rate:x"))
}

func TestRedisCache_StoredResponse(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisCache[pkgcache.StoredResponse](client, "idem:", slog.New(slog.NewTextHandler(io.Discard, nil)))

	in := &pkgcache.StoredResponse{Status: 200, ContentType: "application/json", Body: []byte(`{"ok":true}`)}
	require.NoError(t, c.Set(ctx, "key", in, time.Hour))
	out, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSetNX(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stores := map[string]pkgcache.ResponseStore{
		"memory": NewMemoryCache[pkgcache.StoredResponse](),
		"redis":  NewRedisCache[pkgcache.StoredResponse](client, "idem:", slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	for name, c := range stores {
		t.Run(name, func(t *testing.T) {
			pending := &pkgcache.StoredResponse{Pending: true}
			ok, err := c.SetNX(ctx, "claim", pending, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = c.SetNX(ctx, "claim", &pkgcache.StoredResponse{Status: 200}, time.Minute)
			require.NoError(t, err)
			assert.False(t, ok)

			got, err := c.Get(ctx, "claim")
			require.NoError(t, err)
			assert.True(t, got.Pending)

			require.NoError(t, c.Delete(ctx, "claim"))
			ok, err = c.SetNX(ctx, "claim", pending, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestMemoryCache_SetNXAfterExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	c := NewMemoryCache[pkgcache.StoredResponse]()
	c.now = func() time.Time { return now }

	ok, err := c.SetNX(ctx, "k", &pkgcache.StoredResponse{Pending: true}, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	ok, err = c.SetNX(ctx, "k", &pkgcache.StoredResponse{Pending: true}, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
