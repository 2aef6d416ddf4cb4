package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Total   int64           `json:"total"`
	Revenue decimal.Decimal `json:"revenue"`
}

func TestInMemoryStatsCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryStatsCache()

	var got sample
	hit, err := c.Get(ctx, "dashboard", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := sample{Total: 3, Revenue: decimal.RequireFromString("129.50")}
	require.NoError(t, c.Set(ctx, "dashboard", want, time.Minute))

	hit, err = c.Get(ctx, "dashboard", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want.Total, got.Total)
	assert.True(t, want.Revenue.Equal(got.Revenue))
}

func TestInMemoryStatsCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryStatsCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", sample{Total: 1}, time.Second))

	c.now = func() time.Time { return now.Add(2 * time.Second) }
	var got sample
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInMemoryStatsCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryStatsCache()

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.InvalidateAll(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestInMemoryStatsCache_StoresCopies(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryStatsCache()

	months := []int{1, 2, 3}
	require.NoError(t, c.Set(ctx, "m", months, time.Minute))
	months[0] = 99

	var got []int
	_, err := c.Get(ctx, "m", &got)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestRedisStatsCache_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisStatsCache(client)
	var got sample
	_, err := c.Get(context.Background(), "dashboard", &got)
	assert.Error(t, err)
}
