package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/internal/post/repository"
	"github.com/texasiusc/resources/internal/post/service"
	"github.com/texasiusc/resources/internal/views"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingStore struct{}

func (failingStore) Fetch(context.Context, post.Query, post.Params) (json.RawMessage, error) {
	return nil, errors.New("dial tcp 10.0.0.7:443: connection refused")
}

func newSite(store repository.Store) *gin.Engine {
	svc := service.New(store)
	g := gin.New()
	RegisterSearchRoutes(g, svc)
	RegisterPageRoutes(g, PageOptions{SiteTitle: "Resources", Revalidate: 30 * time.Second}, svc, views.NewDetail(svc, nil))
	return g
}

func scenarioSite() *gin.Engine {
	return newSite(repository.NewMemoryStore(
		post.Document{ID: "a1", Title: "Alpha", Slug: post.Slug{Current: "a"}, Tags: []string{"x"},
			PublishedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		post.Document{ID: "b1", Title: "Beta", Slug: post.Slug{Current: "b"}, Tags: []string{}},
	))
}

func get(g *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func searchTitles(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	var got []post.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	titles := make([]string, 0, len(got))
	for _, s := range got {
		titles = append(titles, s.Title)
	}
	return titles
}

func TestSearchEndpoint_Scenario(t *testing.T) {
	g := scenarioSite()

	assert.Equal(t, []string{"Alpha", "Beta"}, searchTitles(t, get(g, "/api/search")))
	assert.Equal(t, []string{"Alpha", "Beta"}, searchTitles(t, get(g, "/api/search?q=")))
	assert.Equal(t, []string{"Alpha"}, searchTitles(t, get(g, "/api/search?q=Al")))
	assert.Equal(t, []string{"Alpha"}, searchTitles(t, get(g, "/api/search?q=x")))
	assert.Empty(t, searchTitles(t, get(g, "/api/search?q=zzz")))

	w := get(g, "/api/search")
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "a", raw[0]["slug"])
	assert.Equal(t, []any{}, raw[1]["tags"])
	assert.NotContains(t, raw[0], "body")
	assert.NotContains(t, raw[0], "image")
	assert.Equal(t, "2024-01-02T00:00:00Z", raw[0]["publishedAt"])
	require.Contains(t, raw[1], "publishedAt")
	assert.Nil(t, raw[1]["publishedAt"])
	assert.NotContains(t, w.Body.String(), "0001-01-01")

	empty := get(g, "/api/search?q=zzz")
	assert.Equal(t, "[]", empty.Body.String())
}

func TestSearchEndpoint_QueryParam(t *testing.T) {
	g := scenarioSite()

	assert.Equal(t, []string{"Alpha"}, searchTitles(t, get(g, "/api/search?q=Al&q=Beta")))
	assert.Equal(t, []string{"Alpha", "Beta"}, searchTitles(t, get(g, "/api/search?q=%20%20")))
	assert.Equal(t, []string{"Beta"}, searchTitles(t, get(g, "/api/search?q=be")))
}

func TestSearchEndpoint_StoreFailure(t *testing.T) {
	w := get(newSite(failingStore{}), "/api/search?q=Al")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch data"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestListingPage(t *testing.T) {
	g := scenarioSite()

	w := get(g, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `href="/a"`)
	assert.Contains(t, body, `href="/b"`)
	assert.Contains(t, body, "1/2/2024")
	assert.Equal(t, 1, strings.Count(body, "<time>"))
	assert.Contains(t, body, "<li>x</li>")

	w = get(g, "/?q=Al")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alpha")
	assert.NotContains(t, w.Body.String(), "Beta")
	assert.Contains(t, w.Body.String(), `value="Al"`)

	w = get(g, "/?q=zzz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No results found.")
}

func TestDetailPage(t *testing.T) {
	g := scenarioSite()

	w := get(g, "/a")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Alpha</h1>")
	assert.Contains(t, w.Body.String(), views.PlaceholderImage)
	assert.Contains(t, w.Body.String(), "<li>x</li>")
	assert.Equal(t, "public, s-maxage=30, stale-while-revalidate", w.Header().Get("Cache-Control"))

	w = get(g, "/c")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Post Not Found")
	assert.Contains(t, w.Body.String(), `href="/"`)
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestPages_StoreFailure(t *testing.T) {
	g := newSite(failingStore{})

	w := get(g, "/")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), views.MsgLoadFailed)

	w = get(g, "/?q=Al")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), views.MsgSearchFailed)

	w = get(g, "/a")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
	assert.Contains(t, w.Body.String(), `href="/"`)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestStaticPlaceholder(t *testing.T) {
	w := get(scenarioSite(), "/static/placeholder.svg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<svg")
}
