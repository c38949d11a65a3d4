// Package analysis defines the read-only input model of the engine: the
// result produced by the external analysis backend for one uploaded
// document.  Nothing in this package mutates a Result after construction.
package analysis

import (
	"time"
)

// Position is a resolved character range within the document text, as
// reported by the analysis backend.  Offsets are byte offsets into
// DocumentText; Found=false means the backend could not locate the quote.
type Position struct {
	Start int  `json:"start"`
	End   int  `json:"end"`
	Found bool `json:"found"`
}

// FindingKind tags the two wire shapes a finding arrives in.
type FindingKind uint8

const (
	// FindingLegacy is a bare string with no position metadata.
	FindingLegacy FindingKind = iota
	// FindingStructured carries a supporting quote and, usually, a resolved
	// position.
	FindingStructured
)

// Finding is one insight or risk item, normalised from either wire shape at
// the parsing boundary.  Downstream code never re-inspects the original
// shape; it branches on Kind only.
type Finding struct {
	Kind     FindingKind
	Text     string
	Quote    string
	Position Position
}

// NewLegacyFinding constructs a Finding from a bare display string.
func NewLegacyFinding(text string) Finding {
	return Finding{Kind: FindingLegacy, Text: text}
}

// NewStructuredFinding constructs a Finding that carries a quote and a
// backend-resolved position.
func NewStructuredFinding(text, quote string, pos Position) Finding {
	return Finding{Kind: FindingStructured, Text: text, Quote: quote, Position: pos}
}

// Result is one analysis result for one document.  It is immutable input to
// the engine; the identity fields feed the document key, the text and the
// findings feed annotation indexing, and the remaining payloads pass through
// opaquely to the presentation layer.
type Result struct {
	// Identity fields, in resolution priority order.
	PrimaryID   string
	AlternateID string
	Filename    string

	// DocumentText is the full extracted text of the document.
	DocumentText string

	// Analysis is the parsed (possibly degraded) analysis payload.
	Analysis Payload

	// AnalyzedAt is the backend's analysis timestamp.
	AnalyzedAt time.Time
}

// IdentityKey derives the stable namespace key under which all per-document
// UI state is persisted.  The first present identity field wins, never a
// combination; ok=false means no identifying field exists and callers must
// neither persist nor reset anything for this result.
func (r *Result) IdentityKey() (key string, ok bool) {
	switch {
	case r == nil:
		return "", false
	case r.PrimaryID != "":
		return r.PrimaryID, true
	case r.AlternateID != "":
		return r.AlternateID, true
	case r.Filename != "":
		return r.Filename, true
	default:
		return "", false
	}
}
