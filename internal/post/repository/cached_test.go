package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/texasiusc/resources/internal/cache"
	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/pkg/metrics"
)

// countingStore counts fetches per query and can be told to fail.
type countingStore struct {
	next  Store
	calls map[string]int
	err   error
}

func (c *countingStore) Fetch(ctx context.Context, q post.Query, params post.Params) (json.RawMessage, error) {
	c.calls[q.Name]++
	if c.err != nil {
		return nil, c.err
	}
	return c.next.Fetch(ctx, q, params)
}

func newCached(t *testing.T, ttl time.Duration) (*CachingStore, *countingStore, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	inner := &countingStore{next: scenarioStore(), calls: map[string]int{}}
	c := cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: m.Addr()}), "test:")
	return NewCachingStore(inner, c, ttl), inner, m
}

func TestCachingStore_ServesDetailWithinWindow(t *testing.T) {
	s, inner, m := newCached(t, 30*time.Second)
	ctx := context.Background()

	first, err := s.Fetch(ctx, post.PostBySlug, post.SlugParams("a"))
	require.NoError(t, err)
	second, err := s.Fetch(ctx, post.PostBySlug, post.SlugParams("a"))
	require.NoError(t, err)
	require.JSONEq(t, string(first), string(second))
	require.Equal(t, 1, inner.calls[post.PostBySlug.Name])

	// a different slug is a different entry
	_, err = s.Fetch(ctx, post.PostBySlug, post.SlugParams("b"))
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls[post.PostBySlug.Name])

	// past the window the store is asked again
	m.FastForward(31 * time.Second)
	_, err = s.Fetch(ctx, post.PostBySlug, post.SlugParams("a"))
	require.NoError(t, err)
	require.Equal(t, 3, inner.calls[post.PostBySlug.Name])
}

func TestCachingStore_CachesNotFound(t *testing.T) {
	s, inner, _ := newCached(t, 30*time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		raw, err := s.Fetch(ctx, post.PostBySlug, post.SlugParams("c"))
		require.NoError(t, err)
		require.Equal(t, "null", string(raw))
	}
	require.Equal(t, 1, inner.calls[post.PostBySlug.Name])
}

func TestCachingStore_SearchIsNeverCached(t *testing.T) {
	s, inner, _ := newCached(t, 30*time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Fetch(ctx, post.SearchPosts, post.SearchParams("Al"))
		require.NoError(t, err)
		_, err = s.Fetch(ctx, post.AllPosts, nil)
		require.NoError(t, err)
	}
	require.Equal(t, 3, inner.calls[post.SearchPosts.Name])
	require.Equal(t, 3, inner.calls[post.AllPosts.Name])
}

func TestCachingStore_ErrorsAreNotCached(t *testing.T) {
	s, inner, _ := newCached(t, 30*time.Second)
	ctx := context.Background()
	inner.err = errors.New("boom")

	_, err := s.Fetch(ctx, post.PostBySlug, post.SlugParams("a"))
	require.Error(t, err)

	inner.err = nil
	raw, err := s.Fetch(ctx, post.PostBySlug, post.SlugParams("a"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "Alpha")
	require.Equal(t, 2, inner.calls[post.PostBySlug.Name])
}

func TestCachingStore_FallsThroughWhenCacheDown(t *testing.T) {
	s, inner, m := newCached(t, 30*time.Second)
	m.Close()

	before := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("error"))
	raw, err := s.Fetch(context.Background(), post.PostBySlug, post.SlugParams("a"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "Alpha")
	require.Equal(t, 1, inner.calls[post.PostBySlug.Name])
	require.Equal(t, before+1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("error")))
}

func TestCachingStore_ZeroTTLDisablesCache(t *testing.T) {
	s, inner, _ := newCached(t, 0)
	for i := 0; i < 2; i++ {
		_, err := s.Fetch(context.Background(), post.PostBySlug, post.SlugParams("a"))
		require.NoError(t, err)
	}
	require.Equal(t, 2, inner.calls[post.PostBySlug.Name])
}

func TestInstrumentedStore_CountsOutcomes(t *testing.T) {
	inner := &countingStore{next: scenarioStore(), calls: map[string]int{}}
	s := NewInstrumentedStore(inner)
	ctx := context.Background()

	okBefore := testutil.ToFloat64(metrics.ContentFetches.WithLabelValues("allPosts", "ok"))
	errBefore := testutil.ToFloat64(metrics.ContentFetches.WithLabelValues("allPosts", "error"))

	_, err := s.Fetch(ctx, post.AllPosts, nil)
	require.NoError(t, err)
	inner.err = errors.New("down")
	_, err = s.Fetch(ctx, post.AllPosts, nil)
	require.Error(t, err)

	require.Equal(t, okBefore+1, testutil.ToFloat64(metrics.ContentFetches.WithLabelValues("allPosts", "ok")))
	require.Equal(t, errBefore+1, testutil.ToFloat64(metrics.ContentFetches.WithLabelValues("allPosts", "error")))
	require.NoError(t, s.Ping(ctx))
}
