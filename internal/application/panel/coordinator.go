package panel

import (
	"sync"
	"time"

	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

// GestureConfig tunes swipe recognition.
type GestureConfig struct {
	// SwipeDistance is the minimum horizontal travel, in viewport units,
	// for a drag to count as a swipe.
	SwipeDistance float64 `mapstructure:"swipe_distance"`
	// SwipeWindow is the maximum drag duration for a swipe.
	SwipeWindow time.Duration `mapstructure:"swipe_window"`
}

// DefaultGestureConfig returns the standard swipe thresholds.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		SwipeDistance: 50,
		SwipeWindow:   500 * time.Millisecond,
	}
}

type dragState struct {
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	startedAt time.Time
}

// Coordinator keeps the document highlight and every card collection's
// navigation position in lockstep for one session.  At most one annotation
// is active at a time; navigating a collection away from the active
// annotation clears the highlight rather than leaving it pointing at a card
// no longer shown.
type Coordinator struct {
	mu          sync.Mutex
	collections map[Collection][]Item
	index       map[Collection]int
	manualNav   map[Collection]bool
	activeID    string
	drags       map[Collection]*dragState
	gestures    GestureConfig
	logger      logging.Logger
}

// NewCoordinator builds a coordinator over the given collections.
func NewCoordinator(collections map[Collection][]Item, gestures GestureConfig, log logging.Logger) *Coordinator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if gestures.SwipeDistance <= 0 {
		gestures.SwipeDistance = DefaultGestureConfig().SwipeDistance
	}
	if gestures.SwipeWindow <= 0 {
		gestures.SwipeWindow = DefaultGestureConfig().SwipeWindow
	}
	c := &Coordinator{
		gestures: gestures,
		logger:   log.Named("coordinator"),
	}
	c.reset(collections)
	return c
}

// Reset replaces the collections and clears all navigation state.  Used
// when the session switches to a different document.
func (c *Coordinator) Reset(collections map[Collection][]Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(collections)
}

func (c *Coordinator) reset(collections map[Collection][]Item) {
	if collections == nil {
		collections = map[Collection][]Item{}
	}
	c.collections = collections
	c.index = make(map[Collection]int, len(collections))
	c.manualNav = make(map[Collection]bool, len(collections))
	c.activeID = ""
	c.drags = make(map[Collection]*dragState)
}

// SetCollections adopts updated collections in place, used when the bound
// document is re-delivered with fresh analysis data.  Navigation positions
// survive, clamped into the new bounds; the active highlight survives only
// while its annotation still exists somewhere.
func (c *Coordinator) SetCollections(collections map[Collection][]Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if collections == nil {
		collections = map[Collection][]Item{}
	}
	c.collections = collections

	for col, idx := range c.index {
		items, ok := collections[col]
		if !ok {
			delete(c.index, col)
			delete(c.manualNav, col)
			continue
		}
		if idx > len(items)-1 {
			if len(items) == 0 {
				c.index[col] = 0
			} else {
				c.index[col] = len(items) - 1
			}
		}
	}
	for col := range c.drags {
		if _, ok := collections[col]; !ok {
			delete(c.drags, col)
		}
	}
	if c.activeID != "" {
		if _, _, ok := c.locate(c.activeID); !ok {
			c.activeID = ""
		}
	}
}

// SelectFromDocument handles a click on a document highlight.  Selecting
// the already-active annotation toggles the highlight off.  Otherwise the
// annotation becomes active and its collection jumps to the matching card.
func (c *Coordinator) SelectFromDocument(annotationID string) (Collection, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if annotationID == c.activeID && annotationID != "" {
		c.activeID = ""
		col, idx, _ := c.locate(annotationID)
		return col, idx, nil
	}

	col, idx, ok := c.locate(annotationID)
	if !ok {
		return "", 0, apperrors.Newf(apperrors.ErrCodeCollectionUnknown,
			"annotation %q is not in any collection", annotationID)
	}
	c.activeID = annotationID
	c.index[col] = idx
	c.manualNav[col] = true
	return col, idx, nil
}

// locate finds the collection and index of an annotation-backed item.
func (c *Coordinator) locate(annotationID string) (Collection, int, bool) {
	if annotationID == "" {
		return "", 0, false
	}
	for col, items := range c.collections {
		for i, item := range items {
			if item.AnnotationID == annotationID {
				return col, i, true
			}
		}
	}
	return "", 0, false
}

// Navigate moves a collection's position by delta cards, clamping at both
// ends.  If the card at the new position is not the active annotation the
// highlight is cleared.
func (c *Coordinator) Navigate(col Collection, delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moveTo(col, c.index[col]+delta)
}

// JumpTo moves a collection to an absolute position, clamping into range.
func (c *Coordinator) JumpTo(col Collection, index int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moveTo(col, index)
}

func (c *Coordinator) moveTo(col Collection, target int) (int, error) {
	items, ok := c.collections[col]
	if !ok {
		return 0, apperrors.Newf(apperrors.ErrCodeCollectionUnknown, "unknown collection %q", col)
	}
	if len(items) == 0 {
		return 0, nil
	}
	if target < 0 {
		target = 0
	}
	if target > len(items)-1 {
		target = len(items) - 1
	}
	c.index[col] = target
	c.manualNav[col] = true

	// Keep the highlight only while it matches the card in view.  The
	// highlight is shared across collections, so navigating any of them
	// onto a different card drops it.
	if c.activeID != "" && items[target].AnnotationID != c.activeID {
		c.activeID = ""
	}
	return target, nil
}

// BeginDrag starts gesture tracking on a collection.  Each collection has
// its own drag slot, so gestures in flight on different carousels do not
// disturb one another.
func (c *Coordinator) BeginDrag(col Collection, x, y float64, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.collections[col]; !ok {
		return apperrors.Newf(apperrors.ErrCodeCollectionUnknown, "unknown collection %q", col)
	}
	c.drags[col] = &dragState{startX: x, startY: y, lastX: x, lastY: y, startedAt: at}
	return nil
}

// UpdateDrag advances a collection's tracked pointer and returns drag
// progress in [0, 1]: the fraction of the swipe distance travelled so far.
func (c *Coordinator) UpdateDrag(col Collection, x, y float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.drags[col]
	if d == nil {
		return 0
	}
	d.lastX = x
	d.lastY = y
	return c.dragProgress(col)
}

// EndDrag finishes the gesture.  A drag counts as a navigation swipe only
// when it is predominantly horizontal, travelled at least the swipe
// distance, and finished within the swipe window; anything else is ordinary
// scrolling and is ignored.  Leftward swipes advance, rightward swipes go
// back.  Returns the new index and whether the gesture moved the
// collection.
func (c *Coordinator) EndDrag(col Collection, x, y float64, at time.Time) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.drags[col]
	if d == nil {
		return 0, false
	}
	delete(c.drags, col)
	d.lastX = x
	d.lastY = y

	dx := d.lastX - d.startX
	dy := d.lastY - d.startY
	elapsed := at.Sub(d.startedAt)
	if abs(dx) <= abs(dy) || abs(dx) < c.gestures.SwipeDistance || elapsed > c.gestures.SwipeWindow {
		return c.index[col], false
	}

	delta := 1
	if dx > 0 {
		delta = -1
	}
	before := c.index[col]
	after, err := c.moveTo(col, before+delta)
	if err != nil {
		return before, false
	}
	return after, after != before
}

// DragProgress reports the progress of a collection's in-flight drag, or 0.
func (c *Coordinator) DragProgress(col Collection) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragProgress(col)
}

func (c *Coordinator) dragProgress(col Collection) float64 {
	d := c.drags[col]
	if d == nil {
		return 0
	}
	p := abs(d.lastX-d.startX) / c.gestures.SwipeDistance
	if p > 1 {
		p = 1
	}
	return p
}

// ActiveID returns the active annotation ID, or empty when no highlight is
// active.
func (c *Coordinator) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// ClearActive drops the active highlight.
func (c *Coordinator) ClearActive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = ""
}

// Index returns a collection's current position.
func (c *Coordinator) Index(col Collection) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index[col]
}

// Total returns the number of cards in a collection.
func (c *Coordinator) Total(col Collection) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.collections[col])
}

// CurrentItem returns the card a collection is positioned on.
func (c *Coordinator) CurrentItem(col Collection) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.collections[col]
	if len(items) == 0 {
		return Item{}, false
	}
	return items[c.index[col]], true
}

// Progress reports a collection's navigation progress in [0, 1].
func (c *Coordinator) Progress(col Collection) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.collections[col]
	if len(items) <= 1 {
		return 0
	}
	return float64(c.index[col]) / float64(len(items)-1)
}

// ManuallyNavigated reports whether the user has navigated the collection
// in this session.
func (c *Coordinator) ManuallyNavigated(col Collection) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manualNav[col]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
