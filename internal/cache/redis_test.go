package cache

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_SetGet(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	c := NewRedisCache(client, "test:content:")
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "postBySlug:a")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "postBySlug:a", []byte(`{"_id":"1"}`), 30*time.Second))
	got, ok, err := c.Get(ctx, "postBySlug:a")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"_id":"1"}`, string(got))

	// stored under the prefix
	require.True(t, m.Exists("test:content:postBySlug:a"))
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	c := NewRedisCache(client, "")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("null"), 30*time.Second))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	// advance miniredis clock past TTL
	m.FastForward(31 * time.Second)

	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_ZeroTTLIsNotStored(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	require.False(t, m.Exists("content:k"))
}

func TestRedisCache_ErrorWhenUnavailable(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	m.Close()

	_, _, err = NewRedisCache(client, "").Get(context.Background(), "k")
	require.Error(t, err)
}
