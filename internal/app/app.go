// Package app composes the configured engine: persistence backend, feedback
// producer, metrics, session manager, and the HTTP server.
package app

import (
	"context"
	"net/http"

	"github.com/docsight/docsight/internal/application/panel"
	appviewstate "github.com/docsight/docsight/internal/application/viewstate"
	"github.com/docsight/docsight/internal/config"
	"github.com/docsight/docsight/internal/infrastructure/database/postgres"
	"github.com/docsight/docsight/internal/infrastructure/database/redis"
	"github.com/docsight/docsight/internal/infrastructure/kvstore"
	"github.com/docsight/docsight/internal/infrastructure/messaging/kafka"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/docsight/docsight/internal/interfaces/http"
	"github.com/docsight/docsight/internal/interfaces/http/handlers"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

// App holds the assembled engine and the resources it owns.
type App struct {
	cfg      *config.Config
	logger   logging.Logger
	metrics  *prometheus.Metrics
	kv       kvstore.Store
	redis    *redis.Client
	pool     *postgres.Pool
	producer *kafka.Producer
	store    *appviewstate.Store
	sessions *panel.Manager
	server   *httpserver.Server
}

// checkerFunc adapts a plain probe function to the readiness interface.
type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// New assembles the engine from a validated configuration.  On error,
// everything already opened has been closed again.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	a := &App{cfg: cfg, logger: log}

	if cfg.Metrics.Enabled {
		a.metrics = prometheus.NewMetrics(cfg.Metrics.Namespace)
	}

	checkers := map[string]httpserver.HealthChecker{}
	if err := a.openStore(ctx, checkers); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Feedback.Enabled {
		producer, err := kafka.NewProducer(cfg.Feedback.Kafka, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.producer = producer
	}

	a.store = appviewstate.NewStore(a.kv, log,
		appviewstate.WithStaleness(cfg.Store.Staleness),
		appviewstate.WithMetrics(a.metrics),
	)

	deps := panel.Deps{
		Store:     a.store,
		ScrollCfg: cfg.Engine.Scroll,
		Gestures:  cfg.Engine.Gestures,
		Logger:    log,
		Metrics:   a.metrics,
	}
	if a.producer != nil {
		deps.Publisher = a.producer
	}
	a.sessions = panel.NewManager(deps)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		SessionHandler: handlers.NewSessionHandler(a.sessions, a.store, log),
		Checkers:       checkers,
		Logger:         log,
		Metrics:        a.metrics,
		Mode:           cfg.Server.Mode,
	})
	a.server = httpserver.NewServer(cfg.Server, router, log)

	log.Info("Engine assembled",
		logging.String("backend", cfg.Store.Backend),
		logging.Bool("feedback", cfg.Feedback.Enabled),
		logging.Bool("metrics", cfg.Metrics.Enabled),
	)
	return a, nil
}

// openStore opens the configured persistence backend and registers its
// readiness checker.
func (a *App) openStore(ctx context.Context, checkers map[string]httpserver.HealthChecker) error {
	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		a.kv = kvstore.NewMemoryStore()

	case config.BackendRedis:
		client, err := redis.NewClient(&a.cfg.Redis, a.logger)
		if err != nil {
			return err
		}
		a.redis = client
		a.kv = redis.NewStore(client, a.cfg.Store.TTL)
		checkers["redis"] = checkerFunc(client.Ping)

	case config.BackendPostgres:
		if err := postgres.Migrate(a.cfg.Postgres, a.logger); err != nil {
			return err
		}
		pool, err := postgres.NewPool(ctx, a.cfg.Postgres, a.logger)
		if err != nil {
			return err
		}
		a.pool = pool
		a.kv = postgres.NewStore(pool)
		checkers["postgres"] = a.pool

	default:
		return apperrors.Newf(apperrors.ErrCodeValidation,
			"unknown store backend %q", a.cfg.Store.Backend)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	stopErr := a.server.Stop(context.Background())
	if err := <-errCh; err != nil {
		return err
	}
	return stopErr
}

// Store exposes the view state store for maintenance commands.
func (a *App) Store() *appviewstate.Store { return a.store }

// Handler exposes the HTTP handler for tests.
func (a *App) Handler() http.Handler { return a.server.Handler() }

// Close releases every resource the app owns.  Safe to call after a failed
// New.
func (a *App) Close() {
	if a.sessions != nil {
		a.sessions.CloseAll()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("Feedback producer close failed", logging.Err(err))
		}
	}
	// The backend stores own their client or pool, so closing the kv store
	// releases the redis/postgres resources as well.
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			a.logger.Warn("Store close failed", logging.Err(err))
		}
	}
}
