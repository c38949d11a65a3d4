package analysis

import (
	"encoding/json"
	"strings"

	"github.com/docsight/docsight/pkg/errors"
)

// Payload is the structured body of an analysis result: the executive
// summary, the two finding collections, the SWOT quadrants, and the opaque
// impact / recommendation blocks the presentation layer renders without this
// engine's involvement.
type Payload struct {
	Summary         string          `json:"summary"`
	KeyPoints       []Finding       `json:"key_points"`
	RiskFlags       []Finding       `json:"risk_flags"`
	SWOT            SWOT            `json:"swot,omitempty"`
	Impact          json.RawMessage `json:"impact,omitempty"`
	Recommendations json.RawMessage `json:"recommendations,omitempty"`
}

// SWOT holds the four quadrant item lists.  Quadrant cards are text-only;
// they navigate like finding cards but carry no document highlight.
type SWOT struct {
	Strengths     []string `json:"strengths,omitempty"`
	Weaknesses    []string `json:"weaknesses,omitempty"`
	Opportunities []string `json:"opportunities,omitempty"`
	Threats       []string `json:"threats,omitempty"`
}

// findingWire mirrors the structured wire shape of one finding.
type findingWire struct {
	Text     string    `json:"text"`
	Quote    string    `json:"quote"`
	Position *Position `json:"position"`
}

// UnmarshalJSON accepts both wire shapes of a finding: a bare JSON string
// (legacy) or an object with text/quote/position.  All shape knowledge lives
// here; the rest of the engine sees only the tagged Finding.
func (f *Finding) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = NewLegacyFinding(s)
		return nil
	}

	var w findingWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Position == nil {
		// Structured text without position metadata behaves like a legacy
		// finding unless it carries a quote the indexer can search for.
		if w.Quote == "" {
			*f = NewLegacyFinding(w.Text)
			return nil
		}
		*f = Finding{Kind: FindingStructured, Text: w.Text, Quote: w.Quote}
		return nil
	}
	*f = NewStructuredFinding(w.Text, w.Quote, *w.Position)
	return nil
}

// MarshalJSON always emits the structured shape.
func (f Finding) MarshalJSON() ([]byte, error) {
	w := findingWire{Text: f.Text, Quote: f.Quote}
	if f.Kind == FindingStructured && (f.Position != Position{}) {
		pos := f.Position
		w.Position = &pos
	}
	return json.Marshal(w)
}

// ParsePayload decodes the raw analysis block of a result.  The backend
// occasionally returns the payload as a JSON-encoded string instead of an
// object; that layer of quoting is unwrapped before decoding.  On any decode
// failure the returned payload has empty finding collections and the error
// describes the degradation; callers log it and render the empty state, the
// failure never propagates into the render path.
func ParsePayload(raw []byte) (Payload, error) {
	var empty Payload
	if len(raw) == 0 {
		return empty, nil
	}

	data := raw
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return empty, errors.Wrap(err, errors.ErrCodeAnalysisPayloadMalformed,
				"analysis payload is a malformed JSON string")
		}
		data = []byte(inner)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return empty, errors.Wrap(err, errors.ErrCodeAnalysisPayloadMalformed,
			"analysis payload could not be decoded")
	}
	return p, nil
}
