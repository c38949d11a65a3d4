package panel

import (
	"github.com/docsight/docsight/internal/domain/analysis"
)

// Change classifies what an incoming analysis result means for a session.
type Change int

const (
	// ChangeNone: no result or no identity key; nothing to do.
	ChangeNone Change = iota
	// ChangeRehydrate: same document delivered again, typically after a
	// reload.  Session state survives; stale resources are refreshed.
	ChangeRehydrate
	// ChangeSwitch: a different document.  Session state resets and
	// pending work keyed to the old document must be cancelled.
	ChangeSwitch
)

func (c Change) String() string {
	switch c {
	case ChangeRehydrate:
		return "rehydrate"
	case ChangeSwitch:
		return "switch"
	default:
		return "none"
	}
}

// ChangeDetector tracks the document identity a session is bound to and
// classifies each incoming result against it.
type ChangeDetector struct {
	currentKey string
}

// NewChangeDetector returns a detector bound to no document.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// Observe classifies res against the current binding and, on a switch,
// rebinds to the new document.  A result without an identity key never
// changes the binding.
func (d *ChangeDetector) Observe(res *analysis.Result) Change {
	key, ok := res.IdentityKey()
	if !ok {
		return ChangeNone
	}
	if key == d.currentKey {
		return ChangeRehydrate
	}
	d.currentKey = key
	return ChangeSwitch
}

// CurrentKey returns the identity key the detector is bound to, or empty.
func (d *ChangeDetector) CurrentKey() string {
	return d.currentKey
}
