package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/texasiusc/resources/pkg/metrics"
)

func TestRequestLogger_ObservesMatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/:slug", func(c *gin.Context) { c.String(http.StatusNotFound, "nope") })

	before := testutil.CollectAndCount(metrics.HTTPRequestDuration)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing-post", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/another-post", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	// both requests share one series keyed by the route pattern
	require.Equal(t, before+1, testutil.CollectAndCount(metrics.HTTPRequestDuration))
}

func TestCORS_AnswersPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/api/search", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/search", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}
