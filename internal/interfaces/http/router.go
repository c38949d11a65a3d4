package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/prometheus"
	"github.com/docsight/docsight/internal/interfaces/http/handlers"
	"github.com/docsight/docsight/internal/interfaces/http/middleware"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RouterConfig aggregates the handlers and infrastructure hooks needed to
// construct the complete HTTP route tree.
type RouterConfig struct {
	SessionHandler *handlers.SessionHandler

	// Checkers are probed by /readyz; a nil or empty map means the
	// process is ready as soon as it is serving.
	Checkers map[string]HealthChecker

	Logger  logging.Logger
	Metrics *prometheus.Metrics
	Mode    string // gin mode: "debug" | "release" | "test"
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration: global middleware, health endpoints, the optional metrics
// exposition, and the /api/v1 session resource group.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log, cfg.Metrics))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", readiness(cfg.Checkers))

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if cfg.SessionHandler != nil {
		cfg.SessionHandler.Register(api)
	}

	return router
}

// readiness probes every registered checker and reports 503 if any fails.
func readiness(checkers map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		results := make(map[string]string, len(checkers))
		for name, chk := range checkers {
			if err := chk.HealthCheck(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"checks": results})
	}
}
