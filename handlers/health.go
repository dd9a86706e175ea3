package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/texasiusc/resources/pkg/logger"
)

var startTime = time.Now()

// ReadyCheck reports whether a dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

// RegisterHealth registers /health (liveness) and /ready. /ready answers 503
// when any named check fails.
func RegisterHealth(r *gin.Engine, checks map[string]ReadyCheck) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ready := true
		deps := map[string]bool{}
		for name, check := range checks {
			err := check(ctx)
			deps[name] = err == nil
			if err != nil {
				logger.Warnf("ready: %s: %v", name, err)
				ready = false
			}
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})
}
