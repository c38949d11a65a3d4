// Package annotation normalises raw analysis findings into validated,
// highlightable text ranges over the document.  Every finding produces
// exactly one Annotation, resolved or not, so list panels can render all
// findings regardless of highlight availability.
package annotation

import "fmt"

// Kind identifies which finding collection an annotation belongs to.
type Kind string

const (
	KindInsight Kind = "insight"
	KindRisk    Kind = "risk"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindInsight || k == KindRisk
}

// Range is a half-open byte range [Start, End) over the document text.
// Resolved=false means no highlight is renderable for this annotation; the
// item still appears in list panels, just without a "show in document"
// affordance.
type Range struct {
	Start    int  `json:"start"`
	End      int  `json:"end"`
	Resolved bool `json:"resolved"`
}

// ValidFor reports whether the range satisfies 0 <= Start < End <= textLen.
func (r Range) ValidFor(textLen int) bool {
	return r.Start >= 0 && r.Start < r.End && r.End <= textLen
}

// Annotation is one resolved or unresolved highlightable span derived from
// one analysis finding.
type Annotation struct {
	// ID is "{kind}-{index}", e.g. "insight-0", "risk-2".
	ID string `json:"id"`

	Kind        Kind   `json:"kind"`
	SourceIndex int    `json:"source_index"`
	DisplayText string `json:"display_text"`
	SourceQuote string `json:"source_quote,omitempty"`
	Range       Range  `json:"range"`

	// Category is the keyword-derived topic bucket used by panel filters.
	Category Category `json:"category"`

	// Severity is set for risk annotations only.
	Severity Severity `json:"severity,omitempty"`
}

// AnnotationID formats the canonical id for a kind and source index.
func AnnotationID(kind Kind, index int) string {
	return fmt.Sprintf("%s-%d", kind, index)
}
