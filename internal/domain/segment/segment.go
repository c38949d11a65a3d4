// Package segment turns document text plus an annotation set into an
// ordered, non-overlapping sequence of plain and highlighted runs.  The
// segmenter is a pure function: it holds no state and identical inputs
// always produce identical output.
package segment

import (
	"sort"

	"github.com/docsight/docsight/internal/domain/annotation"
)

// Kind distinguishes plain runs from highlighted runs.
type Kind uint8

const (
	KindPlain Kind = iota
	KindHighlight
)

func (k Kind) String() string {
	if k == KindHighlight {
		return "highlight"
	}
	return "plain"
}

// Segment is one run of the segmented document.  Concatenating the Content
// of all segments reconstructs the input text exactly.
type Segment struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`

	// AnnotationID identifies the owning annotation of a highlight run.
	AnnotationID string `json:"annotation_id,omitempty"`

	// Active marks the highlight currently selected across all panels.
	Active bool `json:"active,omitempty"`
}

// Build segments text against the resolved annotations in anns, marking the
// annotation whose id equals activeID as active.
//
// Overlap policy is first-starts-wins: an annotation that starts inside any
// previously emitted highlight is dropped wholesale, not clipped, even where
// it would extend past the emitted range.
//
// Empty text yields a nil slice so callers can render an explicit "no text"
// state; text with zero resolved annotations yields a single plain segment.
func Build(text string, anns []annotation.Annotation, activeID string) []Segment {
	if text == "" {
		return nil
	}

	resolved := make([]annotation.Annotation, 0, len(anns))
	for _, a := range anns {
		if a.Range.Resolved && a.Range.ValidFor(len(text)) {
			resolved = append(resolved, a)
		}
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].Range.Start < resolved[j].Range.Start
	})

	segments := make([]Segment, 0, 2*len(resolved)+1)
	cursor := 0
	for _, a := range resolved {
		if a.Range.Start < cursor {
			// Overlaps an already-emitted highlight; suppressed entirely.
			continue
		}
		if a.Range.Start > cursor {
			segments = append(segments, Segment{
				Kind:    KindPlain,
				Content: text[cursor:a.Range.Start],
			})
		}
		segments = append(segments, Segment{
			Kind:         KindHighlight,
			Content:      text[a.Range.Start:a.Range.End],
			AnnotationID: a.ID,
			Active:       a.ID == activeID,
		})
		cursor = a.Range.End
	}
	if cursor < len(text) {
		segments = append(segments, Segment{Kind: KindPlain, Content: text[cursor:]})
	}
	return segments
}
