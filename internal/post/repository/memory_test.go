package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/texasiusc/resources/internal/post"
)

func scenarioStore() *MemoryStore {
	return NewMemoryStore(
		post.Document{ID: "a1", Title: "Alpha", Slug: post.Slug{Current: "a"}, Tags: []string{"x"},
			PublishedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		post.Document{ID: "b1", Title: "Beta", Slug: post.Slug{Current: "b"}, Tags: []string{}},
	)
}

func TestMemoryStore_PostBySlug(t *testing.T) {
	s := scenarioStore()
	ctx := context.Background()

	raw, err := s.Fetch(ctx, post.PostBySlug, post.SlugParams("a"))
	require.NoError(t, err)
	d, err := post.DecodeDocument(raw)
	require.NoError(t, err)
	require.NotNil(t, d)
	require.Equal(t, "Alpha", d.Title)

	raw, err = s.Fetch(ctx, post.PostBySlug, post.SlugParams("c"))
	require.NoError(t, err)
	require.Equal(t, "null", string(raw))
}

func TestMemoryStore_AllAndSearch(t *testing.T) {
	s := scenarioStore()
	ctx := context.Background()

	raw, err := s.Fetch(ctx, post.AllPosts, nil)
	require.NoError(t, err)
	all, _, err := post.DecodeSummaries(raw)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "a", all[0].Slug)
	require.Equal(t, "b", all[1].Slug)
	require.NotContains(t, string(raw), "body")

	raw, err = s.Fetch(ctx, post.SearchPosts, post.SearchParams("Al"))
	require.NoError(t, err)
	got, _, err := post.DecodeSummaries(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Alpha", got[0].Title)

	raw, err = s.Fetch(ctx, post.SearchPosts, post.SearchParams("zzz"))
	require.NoError(t, err)
	require.Equal(t, "[]", string(raw))
}

func TestMemoryStore_PutReplacesInPlace(t *testing.T) {
	s := scenarioStore()
	s.Put(post.Document{ID: "a1", Title: "Alpha v2", Slug: post.Slug{Current: "a"}})

	raw, err := s.Fetch(context.Background(), post.AllPosts, nil)
	require.NoError(t, err)
	all, _, err := post.DecodeSummaries(raw)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Alpha v2", all[0].Title)
}

func TestMemoryStore_Errors(t *testing.T) {
	s := scenarioStore()

	_, err := s.Fetch(context.Background(), post.Query{Name: "nope"}, nil)
	require.True(t, errors.Is(err, ErrUnknownQuery))

	_, err = s.Fetch(context.Background(), post.PostBySlug, post.Params{"slug": 3})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Fetch(ctx, post.AllPosts, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"_id": "a1", "_type": "post", "title": "Alpha", "slug": {"current": "a"}, "tags": ["x"]},
		{"_id": "broken"}
	]`), 0o600))

	s, skipped, err := LoadFixture(path)
	require.NoError(t, err)
	require.Equal(t, 1, skipped)

	raw, err := s.Fetch(context.Background(), post.PostBySlug, post.SlugParams("a"))
	require.NoError(t, err)
	require.Contains(t, string(raw), `"Alpha"`)

	_, _, err = LoadFixture(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
