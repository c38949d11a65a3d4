package panel

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/docsight/docsight/internal/application/feedback"
	"github.com/docsight/docsight/internal/application/scroll"
	appviewstate "github.com/docsight/docsight/internal/application/viewstate"
	"github.com/docsight/docsight/internal/domain/analysis"
	"github.com/docsight/docsight/internal/domain/annotation"
	"github.com/docsight/docsight/internal/domain/segment"
	domain "github.com/docsight/docsight/internal/domain/viewstate"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/prometheus"
	"github.com/docsight/docsight/internal/scheduler"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

// Deps binds the collaborators a session needs.
type Deps struct {
	Store     *appviewstate.Store
	Publisher feedback.Publisher
	Scheduler scheduler.Scheduler
	Indexer   *annotation.Indexer
	ScrollCfg scroll.Config
	Gestures  GestureConfig
	Logger    logging.Logger
	Metrics   *prometheus.Metrics
}

func (d *Deps) applyDefaults() {
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.Scheduler == nil {
		d.Scheduler = scheduler.NewSystem()
	}
	if d.Indexer == nil {
		d.Indexer = annotation.NewIndexer(d.Logger)
	}
	if d.Gestures.SwipeDistance <= 0 && d.Gestures.SwipeWindow <= 0 {
		d.Gestures = DefaultGestureConfig()
	}
}

// Session holds one client's live interaction state: the bound document,
// its annotations, the highlight coordinator, per-panel scroll trackers,
// and the feedback record.
type Session struct {
	mu          sync.Mutex
	id          string
	deps        Deps
	detector    *ChangeDetector
	result      *analysis.Result
	annotations []annotation.Annotation
	coordinator *Coordinator
	emitter     *feedback.Emitter
	trackers    map[domain.Tab]*scroll.Tracker
	viewports   map[domain.Tab]*scroll.ReportedViewport
	closed      bool
}

func newSession(id string, deps Deps) *Session {
	return &Session{
		id:          id,
		deps:        deps,
		detector:    NewChangeDetector(),
		coordinator: NewCoordinator(nil, deps.Gestures, deps.Logger),
		emitter:     feedback.NewEmitter(deps.Publisher, deps.Logger, deps.Metrics),
		trackers:    make(map[domain.Tab]*scroll.Tracker),
		viewports:   make(map[domain.Tab]*scroll.ReportedViewport),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Key returns the identity key of the bound document, or empty.
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.CurrentKey()
}

// SetDocument delivers an analysis result to the session.  A keyless result
// changes nothing.  The same document again re-indexes annotations and
// adopts the updated cards, clamping navigation positions and keeping the
// highlight and feedback state where they still apply.  A different
// document resets everything and rebinds the scroll trackers, which cancels
// any timer still pending against the old document.  The returned view
// state is the persisted state for the bound document.
func (s *Session) SetDocument(ctx context.Context, res *analysis.Result) (Change, domain.ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change := s.detector.Observe(res)
	if change == ChangeNone {
		return change, domain.Default("")
	}

	key := s.detector.CurrentKey()
	s.result = res
	s.annotations = s.deps.Indexer.Index(res)

	switch change {
	case ChangeSwitch:
		s.coordinator.Reset(BuildCollections(&res.Analysis, s.annotations))
		s.emitter.Reset()
		for _, tr := range s.trackers {
			tr.SetKey(key)
		}
		s.deps.Logger.Info("Session bound to document",
			logging.String("session_id", s.id),
			logging.String("key", key),
			logging.Int("annotations", len(s.annotations)),
		)
	case ChangeRehydrate:
		// Fresh analysis data for the same document: adopt the updated
		// cards without losing navigation positions or the highlight.
		s.coordinator.SetCollections(BuildCollections(&res.Analysis, s.annotations))
		s.deps.Logger.Debug("Session rehydrated",
			logging.String("session_id", s.id),
			logging.String("key", key),
		)
	}

	return change, s.deps.Store.Load(ctx, key)
}

// Segments renders the bound document into alternating plain and highlight
// segments, marking the active annotation.
func (s *Session) Segments() []segment.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.SegmentationsTotal.Inc()
	}
	return segment.Build(s.result.DocumentText, s.annotations, s.coordinator.ActiveID())
}

// Annotations returns the indexed annotations of the bound document.
func (s *Session) Annotations() []annotation.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.annotations
}

// Result returns the bound analysis result, or nil.
func (s *Session) Result() *analysis.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Coordinator returns the session's highlight coordinator.
func (s *Session) Coordinator() *Coordinator { return s.coordinator }

// Feedback returns the session's feedback emitter.
func (s *Session) Feedback() *feedback.Emitter { return s.emitter }

// GiveFeedback records feedback for one of the bound document's
// annotations and emits it.  The annotation must exist so the event can
// carry its category and display text.
func (s *Session) GiveFeedback(ctx context.Context, annotationID string, typ feedback.Type) error {
	s.mu.Lock()
	key := s.detector.CurrentKey()
	var ann annotation.Annotation
	found := false
	for _, a := range s.annotations {
		if a.ID == annotationID {
			ann = a
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !typ.IsValid() {
		return apperrors.Newf(apperrors.ErrCodeFeedbackTypeInvalid,
			"feedback must be positive or negative, got %q", typ)
	}
	if !found {
		return apperrors.Newf(apperrors.ErrCodeValidation, "unknown annotation %q", annotationID)
	}
	return s.emitter.Emit(ctx, key, ann, typ)
}

// Tracker returns the scroll tracker for tab, creating it and its viewport
// mirror on first use.
func (s *Session) Tracker(tab domain.Tab) *scroll.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tr, ok := s.trackers[tab]; ok {
		return tr
	}
	vp := scroll.NewReportedViewport()
	tr := scroll.NewTracker(s.detector.CurrentKey(), tab, vp, s.deps.Store,
		s.deps.Scheduler, s.deps.ScrollCfg, s.deps.Logger, s.deps.Metrics)
	s.viewports[tab] = vp
	s.trackers[tab] = tr
	return tr
}

// Viewport returns the viewport mirror for tab, creating the tracker pair
// on first use.
func (s *Session) Viewport(tab domain.Tab) *scroll.ReportedViewport {
	s.Tracker(tab)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewports[tab]
}

// State loads the persisted view state for the bound document.
func (s *Session) State(ctx context.Context) domain.ViewState {
	return s.deps.Store.Load(ctx, s.Key())
}

// SaveState applies actions to the persisted view state for the bound
// document.  With no bound document this is a no-op.
func (s *Session) SaveState(ctx context.Context, actions ...domain.Action) {
	s.deps.Store.Save(ctx, s.Key(), actions...)
}

// Close cancels every pending timer owned by the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, tr := range s.trackers {
		tr.Close()
	}
}

// Manager owns the live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Deps
}

// NewManager builds a session manager with the given collaborators.
func NewManager(deps Deps) *Manager {
	deps.applyDefaults()
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
	}
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.deps)
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	m.deps.Logger.Info("Session created", logging.String("session_id", s.id))
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return s, nil
}

// Remove closes and forgets a session.  Removing an unknown ID is a no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
		m.deps.Logger.Info("Session removed", logging.String("session_id", id))
	}
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll closes every session, for shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
