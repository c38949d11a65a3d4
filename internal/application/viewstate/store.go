// Package viewstate implements the persisted view state service: load with
// defaults, best-effort save through reducer actions, and staleness-bounded
// records.
package viewstate

import (
	"context"
	"time"

	domain "github.com/docsight/docsight/internal/domain/viewstate"
	"github.com/docsight/docsight/internal/infrastructure/kvstore"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

// DefaultStaleness bounds how long a persisted record stays authoritative.
const DefaultStaleness = 24 * time.Hour

// Store persists per-document view state.  Reads always succeed: a missing,
// undecodable, or stale record yields defaults.  Writes are best-effort;
// persistence failures are logged and never surfaced to the interaction
// path.
type Store struct {
	kv        kvstore.Store
	staleness time.Duration
	now       func() time.Time
	logger    logging.Logger
	metrics   *prometheus.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithStaleness overrides the staleness window.
func WithStaleness(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.staleness = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics attaches load/save counters.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore builds a view state store over kv.
func NewStore(kv kvstore.Store, log logging.Logger, opts ...Option) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Store{
		kv:        kv,
		staleness: DefaultStaleness,
		now:       time.Now,
		logger:    log.Named("viewstate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the view state for key.  An empty key, a missing record, a
// record that fails to decode, and a record older than the staleness window
// all yield Default(key).  Load never returns an error to callers; failures
// degrade to defaults.
func (s *Store) Load(ctx context.Context, key string) domain.ViewState {
	if key == "" {
		return domain.Default(key)
	}

	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.countLoad("default")
		} else {
			s.logger.Warn("View state read failed, using defaults",
				logging.String("key", key), logging.Err(err))
			s.countLoad("error")
		}
		return domain.Default(key)
	}

	state, err := domain.Decode(key, data)
	if err != nil {
		s.logger.Warn("View state record undecodable, using defaults",
			logging.String("key", key), logging.Err(err))
		s.countLoad("error")
		return domain.Default(key)
	}

	if !state.SavedAt.IsZero() && s.now().Sub(state.SavedAt) > s.staleness {
		// Stale records are dropped so the next save starts clean.
		if rerr := s.kv.Remove(ctx, key); rerr != nil {
			s.logger.Warn("Failed to drop stale view state",
				logging.String("key", key), logging.Err(rerr))
		}
		s.countLoad("stale")
		return domain.Default(key)
	}

	s.countLoad("hit")
	return state
}

// Save applies actions to the stored state for key and writes the result
// back.  An empty key or an empty action list is a no-op.  The read half of
// the read-merge-write uses the same degradation rules as Load, so a save
// over a corrupt record rebuilds it from defaults plus the actions.
// Persistence failures are logged, counted, and swallowed.
func (s *Store) Save(ctx context.Context, key string, actions ...domain.Action) {
	if key == "" || len(actions) == 0 {
		s.countSave("skipped")
		return
	}

	current := s.Load(ctx, key)
	next := domain.Apply(current, s.now(), actions...)

	data, err := domain.Encode(next)
	if err != nil {
		s.logger.Error("View state encode failed", logging.String("key", key), logging.Err(err))
		s.countSave("error")
		return
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		s.logger.Warn("View state write failed", logging.String("key", key), logging.Err(err))
		s.countSave("error")
		return
	}
	s.countSave("ok")
}

// Remove deletes the record for key.  Empty keys are a no-op.
func (s *Store) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.kv.Remove(ctx, key); err != nil {
		s.logger.Warn("View state remove failed", logging.String("key", key), logging.Err(err))
	}
}

// Clear deletes every persisted view state record.
func (s *Store) Clear(ctx context.Context) {
	keys, err := s.kv.Keys(ctx, "")
	if err != nil {
		s.logger.Warn("View state clear failed to list keys", logging.Err(err))
		return
	}
	for _, k := range keys {
		if err := s.kv.Remove(ctx, k); err != nil {
			s.logger.Warn("View state clear failed to remove key",
				logging.String("key", k), logging.Err(err))
		}
	}
}

func (s *Store) countLoad(result string) {
	if s.metrics != nil {
		s.metrics.StateLoadsTotal.WithLabelValues(result).Inc()
	}
}

func (s *Store) countSave(result string) {
	if s.metrics != nil {
		s.metrics.StateSavesTotal.WithLabelValues(result).Inc()
	}
}
