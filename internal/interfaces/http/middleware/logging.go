// Package middleware holds the gin middleware for the HTTP surface.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

// Logger logs each request and records the HTTP metrics.  The route
// template is used as the path label so that per-session URLs do not
// explode metric cardinality.
func Logger(log logging.Logger, metrics *prometheus.Metrics) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()

		if metrics != nil {
			metrics.HTTPRequestsTotal.WithLabelValues(
				c.Request.Method, path, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(
				c.Request.Method, path).Observe(elapsed.Seconds())
		}

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
		}
		if status >= 500 {
			log.Error("Request failed", fields...)
		} else {
			log.Debug("Request handled", fields...)
		}
	}
}

// Recovery converts panics into structured 500 responses.
func Recovery(log logging.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Panic recovered", logging.Any("panic", recovered))
		c.AbortWithStatusJSON(500, gin.H{
			"code":    string(apperrors.ErrCodeInternal),
			"message": "internal server error",
		})
	})
}
