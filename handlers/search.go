package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/texasiusc/resources/internal/views"
	"github.com/texasiusc/resources/pkg/logger"
	"github.com/texasiusc/resources/pkg/metrics"
)

// RegisterSearchRoutes registers GET /api/search. A blank or missing q lists
// every post; otherwise posts matching q by title, tag or body text. When q is
// repeated the first value is used.
func RegisterSearchRoutes(r *gin.Engine, search views.Searcher) {
	r.GET("/api/search", func(c *gin.Context) {
		q := c.Query("q")

		mode := "filtered"
		if strings.TrimSpace(q) == "" {
			mode = "all"
		}

		posts, err := search.Search(c.Request.Context(), q)
		if err != nil {
			logger.Errorf("search %q: %v", q, err)
			metrics.SearchRequests.WithLabelValues(mode, "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data"})
			return
		}
		metrics.SearchRequests.WithLabelValues(mode, "ok").Inc()
		c.JSON(http.StatusOK, posts)
	})
}
