// Package viewstate models the per-document, per-panel UI preferences that
// persist across sessions: active tab, card mode, chart types, filters,
// drawer flags, and scroll snapshots.  All mutation goes through the reducer
// in reducer.go so that every field has exactly one writer.
package viewstate

import "time"

// Tab identifies one of the dashboard's per-document view panels.
type Tab string

const (
	TabAnalysis Tab = "analysis"
	TabSWOT     Tab = "swot"
	TabInsights Tab = "insights"
	TabDocument Tab = "document"
	TabViewer   Tab = "document-viewer"
)

// IsValid reports whether t names a known panel.
func (t Tab) IsValid() bool {
	switch t {
	case TabAnalysis, TabSWOT, TabInsights, TabDocument, TabViewer:
		return true
	}
	return false
}

// CardMode selects how finding cards render in list panels.
type CardMode string

const (
	CardModeExpanded CardMode = "expanded"
	CardModeCompact  CardMode = "compact"
)

// ChartType selects the visualization for a panel's chart widget.
type ChartType string

const (
	ChartTypeBar   ChartType = "bar"
	ChartTypeRadar ChartType = "radar"
	ChartTypePie   ChartType = "pie"
)

// ScrollSnapshot is one captured scroll position for one viewport.  The
// percentage is primary on restore because content may re-flow to a
// different height; the absolute top is the fallback.
type ScrollSnapshot struct {
	Top            float64   `json:"top"`
	ContentHeight  float64   `json:"content_height"`
	ViewportHeight float64   `json:"viewport_height"`
	Percentage     float64   `json:"percentage"`
	CapturedAt     time.Time `json:"captured_at"`
}

// FresherThan reports whether the snapshot was captured within window of now.
func (s ScrollSnapshot) FresherThan(now time.Time, window time.Duration) bool {
	if s.CapturedAt.IsZero() {
		return false
	}
	return now.Sub(s.CapturedAt) <= window
}

// PanelState is the persisted preference set of one panel.
type PanelState struct {
	ChartType       ChartType       `json:"chart_type,omitempty"`
	CategoryFilters []string        `json:"category_filters,omitempty"`
	LevelFilters    []string        `json:"level_filters,omitempty"`
	Scroll          *ScrollSnapshot `json:"scroll,omitempty"`
	DrawerOpen      bool            `json:"drawer_open,omitempty"`
}

// ViewState is the full persisted preference record for one document.
type ViewState struct {
	DocumentKey string             `json:"document_key"`
	ActiveTab   Tab                `json:"active_tab"`
	CardMode    CardMode           `json:"card_mode"`
	Panels      map[Tab]PanelState `json:"panels,omitempty"`
	SavedAt     time.Time          `json:"saved_at"`
}

// Default returns the hard-default view state for a document key.
func Default(key string) ViewState {
	return ViewState{
		DocumentKey: key,
		ActiveTab:   TabAnalysis,
		CardMode:    CardModeExpanded,
		Panels:      map[Tab]PanelState{},
	}
}

// Panel returns the state for tab, or the zero PanelState when the tab has
// never been written.
func (s ViewState) Panel(tab Tab) PanelState {
	if s.Panels == nil {
		return PanelState{}
	}
	return s.Panels[tab]
}

// clone returns a deep copy so reducer applications never alias the
// caller's maps or snapshots.
func (s ViewState) clone() ViewState {
	out := s
	out.Panels = make(map[Tab]PanelState, len(s.Panels))
	for tab, p := range s.Panels {
		cp := p
		if p.Scroll != nil {
			snap := *p.Scroll
			cp.Scroll = &snap
		}
		cp.CategoryFilters = append([]string(nil), p.CategoryFilters...)
		cp.LevelFilters = append([]string(nil), p.LevelFilters...)
		out.Panels[tab] = cp
	}
	return out
}
