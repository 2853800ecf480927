package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "blinkit_scraper/internal/adapters/redis"
	"blinkit_scraper/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_RoundTripAndTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	var miss domain.Run
	ok, err := c.Get(ctx, "run:r1", &miss)
	require.NoError(t, err)
	assert.False(t, ok)

	in := domain.Run{ID: "r1", Records: 12, MockRecords: 4, StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, c.Set(ctx, "run:r1", in, 60))
	assert.True(t, mr.Exists("blinkit:run:r1"))

	var out domain.Run
	ok, err = c.Get(ctx, "run:r1", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Records, out.Records)
	assert.True(t, in.StartedAt.Equal(out.StartedAt))

	mr.FastForward(61 * time.Second)
	ok, err = c.Get(ctx, "run:r1", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Del(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, 60))
	require.NoError(t, c.Del(ctx, "k"))

	var v map[string]int
	ok, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_CorruptValueIsAMiss(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("blinkit:run:bad", "{not json"))

	var out domain.Run
	ok, err := c.Get(context.Background(), "run:bad", &out)
	assert.Error(t, err)
	assert.False(t, ok)
}
