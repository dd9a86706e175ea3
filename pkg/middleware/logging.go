package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/texasiusc/resources/pkg/logger"
	"github.com/texasiusc/resources/pkg/metrics"
)

// RequestLogger logs one structured line per request and records its latency.
// Status >= 400 logs at warn, >= 500 at error. The route label is the matched
// gin pattern ("/:slug"), never the raw path, to keep metric cardinality bounded.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(duration.Seconds())

		l := logger.Logger()
		event := l.Info()
		if status >= 400 {
			event = l.Warn()
		}
		if status >= 500 {
			event = l.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", route).
			Int("status", status).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("request completed")
	}
}

// CORS sets permissive read-only CORS headers and answers preflight requests.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
