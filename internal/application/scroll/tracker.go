// Package scroll implements debounced scroll capture and freshness-guarded
// scroll restoration for one viewport.
package scroll

import (
	"context"
	"sync"
	"time"

	appviewstate "github.com/docsight/docsight/internal/application/viewstate"
	domain "github.com/docsight/docsight/internal/domain/viewstate"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/prometheus"
	"github.com/docsight/docsight/internal/scheduler"
)

// Viewport is the scrollable surface a tracker observes and drives.
type Viewport interface {
	ScrollTop() float64
	ContentHeight() float64
	ViewportHeight() float64
	SetScrollTop(top float64)
}

// Config tunes capture and restore behavior.
type Config struct {
	// Debounce delays capture after the last scroll event.
	Debounce time.Duration `mapstructure:"debounce"`
	// Freshness bounds how old a snapshot may be and still be restored.
	Freshness time.Duration `mapstructure:"freshness"`
	// RestoreDelays schedules the restore attempts; content that has not
	// finished laying out gets another chance at each delay.
	RestoreDelays []time.Duration `mapstructure:"restore_delays"`
	// PixelEpsilon is the tolerance when verifying an applied position.
	PixelEpsilon float64 `mapstructure:"pixel_epsilon"`
}

// DefaultConfig returns the standard capture/restore tuning.
func DefaultConfig() Config {
	return Config{
		Debounce:  100 * time.Millisecond,
		Freshness: 6 * time.Hour,
		RestoreDelays: []time.Duration{
			50 * time.Millisecond,
			150 * time.Millisecond,
			400 * time.Millisecond,
			1 * time.Second,
		},
		PixelEpsilon: 2,
	}
}

// RestoreResult classifies the outcome of a restore run.
type RestoreResult string

const (
	RestoreNone      RestoreResult = ""
	RestorePending   RestoreResult = "pending"
	RestoreRestored  RestoreResult = "restored"
	RestoreStale     RestoreResult = "stale"
	RestoreExhausted RestoreResult = "exhausted"
)

// Tracker binds one viewport to one panel of one document.  Scroll events
// are captured through a debounce timer whose callback revalidates the
// document key before persisting, so a capture scheduled against one
// document can never write under another document's key.
type Tracker struct {
	mu       sync.Mutex
	key      string
	tab      domain.Tab
	viewport Viewport
	store    *appviewstate.Store
	sched    scheduler.Scheduler
	capture  *scheduler.Task
	restore  *scheduler.Task
	cfg      Config
	logger   logging.Logger
	metrics  *prometheus.Metrics

	restoreResult RestoreResult
	closed        bool
}

// NewTracker builds a tracker for one viewport.
func NewTracker(
	key string,
	tab domain.Tab,
	vp Viewport,
	store *appviewstate.Store,
	sched scheduler.Scheduler,
	cfg Config,
	log logging.Logger,
	metrics *prometheus.Metrics,
) *Tracker {
	if log == nil {
		log = logging.NewNopLogger()
	}
	def := DefaultConfig()
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.Freshness <= 0 {
		cfg.Freshness = def.Freshness
	}
	if len(cfg.RestoreDelays) == 0 {
		cfg.RestoreDelays = def.RestoreDelays
	}
	if cfg.PixelEpsilon <= 0 {
		cfg.PixelEpsilon = def.PixelEpsilon
	}
	return &Tracker{
		key:      key,
		tab:      tab,
		viewport: vp,
		store:    store,
		sched:    sched,
		capture:  scheduler.NewTask(sched),
		restore:  scheduler.NewTask(sched),
		cfg:      cfg,
		logger:   log.Named("scroll"),
		metrics:  metrics,
	}
}

// OnScroll notes a scroll event and (re)arms the debounce timer.  Only the
// last event inside the debounce window is captured.
func (t *Tracker) OnScroll(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.key == "" {
		return
	}

	key := t.key
	t.capture.Schedule(t.cfg.Debounce, func() {
		t.captureNow(ctx, key)
	})
}

// captureNow runs in the debounce timer callback.
func (t *Tracker) captureNow(ctx context.Context, scheduledKey string) {
	t.mu.Lock()
	if t.closed || t.key != scheduledKey {
		// The document changed between scheduling and firing.
		t.mu.Unlock()
		t.countStaleTimer()
		return
	}
	vp := t.viewport
	tab := t.tab
	t.mu.Unlock()

	snap := domain.ScrollSnapshot{
		Top:            vp.ScrollTop(),
		ContentHeight:  vp.ContentHeight(),
		ViewportHeight: vp.ViewportHeight(),
		CapturedAt:     t.sched.Now(),
	}
	snap.Percentage = percentage(snap)

	t.store.Save(ctx, scheduledKey, domain.SetScroll{Tab: tab, Snapshot: snap})
	if t.metrics != nil {
		t.metrics.ScrollCaptures.Inc()
	}
	t.logger.Debug("Scroll captured",
		logging.String("key", scheduledKey),
		logging.String("tab", string(tab)),
		logging.Float64("percentage", snap.Percentage),
	)
}

// Restore schedules restoration of the persisted position.  A missing or
// out-of-freshness snapshot leaves the viewport untouched.  Content that
// has not laid out yet gets retried at each configured delay; the final
// attempt falls back from percentage to the absolute pixel position.
func (t *Tracker) Restore(ctx context.Context) RestoreResult {
	t.mu.Lock()
	if t.closed || t.key == "" {
		t.mu.Unlock()
		return RestoreNone
	}
	key := t.key
	tab := t.tab
	t.mu.Unlock()

	state := t.store.Load(ctx, key)
	snap := state.Panel(tab).Scroll
	if snap == nil {
		t.setRestoreResult(RestoreNone)
		return RestoreNone
	}
	if !snap.FresherThan(t.sched.Now(), t.cfg.Freshness) {
		t.setRestoreResult(RestoreStale)
		t.countRestore("stale")
		return RestoreStale
	}

	t.setRestoreResult(RestorePending)
	t.scheduleAttempt(key, *snap, 0)
	return RestorePending
}

func (t *Tracker) scheduleAttempt(scheduledKey string, snap domain.ScrollSnapshot, attempt int) {
	t.restore.Schedule(t.cfg.RestoreDelays[attempt], func() {
		t.attemptRestore(scheduledKey, snap, attempt)
	})
}

func (t *Tracker) attemptRestore(scheduledKey string, snap domain.ScrollSnapshot, attempt int) {
	t.mu.Lock()
	if t.closed || t.key != scheduledKey {
		t.mu.Unlock()
		t.countStaleTimer()
		return
	}
	vp := t.viewport
	t.mu.Unlock()

	last := attempt == len(t.cfg.RestoreDelays)-1

	scrollable := vp.ContentHeight() - vp.ViewportHeight()
	if scrollable > 0 {
		target := snap.Percentage * scrollable
		vp.SetScrollTop(target)
		if abs(vp.ScrollTop()-target) <= t.cfg.PixelEpsilon {
			t.setRestoreResult(RestoreRestored)
			t.countRestore("restored")
			t.logger.Debug("Scroll restored",
				logging.String("key", scheduledKey),
				logging.Int("attempt", attempt+1),
			)
			return
		}
	}

	if !last {
		t.scheduleAttempt(scheduledKey, snap, attempt+1)
		return
	}

	// Final attempt: the percentage target was unreachable, fall back to
	// the captured pixel position.
	vp.SetScrollTop(snap.Top)
	if abs(vp.ScrollTop()-snap.Top) <= t.cfg.PixelEpsilon {
		t.setRestoreResult(RestoreRestored)
		t.countRestore("restored")
		return
	}
	t.setRestoreResult(RestoreExhausted)
	t.countRestore("exhausted")
	t.logger.Warn("Scroll restore exhausted", logging.String("key", scheduledKey))
}

// SetKey rebinds the tracker to a different document, cancelling pending
// capture and restore timers so they cannot fire against the new document.
func (t *Tracker) SetKey(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if key == t.key {
		return
	}
	t.key = key
	t.restoreResult = RestoreNone
	if t.capture.Cancel() {
		t.countStaleTimer()
	}
	if t.restore.Cancel() {
		t.countStaleTimer()
	}
}

// LastRestoreResult reports the outcome of the most recent restore run.
func (t *Tracker) LastRestoreResult() RestoreResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.restoreResult
}

// Close cancels pending timers and disables the tracker.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.capture.Cancel()
	t.restore.Cancel()
}

func (t *Tracker) setRestoreResult(r RestoreResult) {
	t.mu.Lock()
	t.restoreResult = r
	t.mu.Unlock()
}

func (t *Tracker) countStaleTimer() {
	if t.metrics != nil {
		t.metrics.StaleTimersCancelled.Inc()
	}
}

func (t *Tracker) countRestore(result string) {
	if t.metrics != nil {
		t.metrics.ScrollRestoresTotal.WithLabelValues(result).Inc()
	}
}

// percentage computes how far down the scrollable range a snapshot sits,
// clamped to [0, 1].  A content shorter than its viewport has no scrollable
// range and reports 0.
func percentage(s domain.ScrollSnapshot) float64 {
	scrollable := s.ContentHeight - s.ViewportHeight
	if scrollable <= 0 {
		return 0
	}
	p := s.Top / scrollable
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
