package viewstate

import "time"

// Action is one explicit state mutation.  The set is closed: each field of
// ViewState is owned by exactly one action type, which keeps concurrent
// writers from clobbering fields they do not own.
type Action interface {
	apply(s *ViewState)
}

// SetActiveTab switches the active panel.
type SetActiveTab struct {
	Tab Tab
}

func (a SetActiveTab) apply(s *ViewState) {
	if a.Tab.IsValid() {
		s.ActiveTab = a.Tab
	}
}

// SetCardMode switches list panels between expanded and compact cards.
type SetCardMode struct {
	Mode CardMode
}

func (a SetCardMode) apply(s *ViewState) {
	if a.Mode == CardModeExpanded || a.Mode == CardModeCompact {
		s.CardMode = a.Mode
	}
}

// SetChartType selects the chart visualization of one panel.
type SetChartType struct {
	Tab   Tab
	Chart ChartType
}

func (a SetChartType) apply(s *ViewState) {
	p := s.Panels[a.Tab]
	p.ChartType = a.Chart
	s.Panels[a.Tab] = p
}

// SetCategoryFilters replaces the category filter set of one panel.
type SetCategoryFilters struct {
	Tab     Tab
	Filters []string
}

func (a SetCategoryFilters) apply(s *ViewState) {
	p := s.Panels[a.Tab]
	p.CategoryFilters = append([]string(nil), a.Filters...)
	s.Panels[a.Tab] = p
}

// SetLevelFilters replaces the severity level filter set of one panel.
type SetLevelFilters struct {
	Tab     Tab
	Filters []string
}

func (a SetLevelFilters) apply(s *ViewState) {
	p := s.Panels[a.Tab]
	p.LevelFilters = append([]string(nil), a.Filters...)
	s.Panels[a.Tab] = p
}

// SetScroll records a scroll snapshot for one panel.
type SetScroll struct {
	Tab      Tab
	Snapshot ScrollSnapshot
}

func (a SetScroll) apply(s *ViewState) {
	p := s.Panels[a.Tab]
	snap := a.Snapshot
	p.Scroll = &snap
	s.Panels[a.Tab] = p
}

// SetDrawerOpen records whether one panel's detail drawer is open.
type SetDrawerOpen struct {
	Tab  Tab
	Open bool
}

func (a SetDrawerOpen) apply(s *ViewState) {
	p := s.Panels[a.Tab]
	p.DrawerOpen = a.Open
	s.Panels[a.Tab] = p
}

// Apply returns a new ViewState with the actions applied in order and
// SavedAt stamped with now.  The input is never mutated.
func Apply(s ViewState, now time.Time, actions ...Action) ViewState {
	out := s.clone()
	for _, a := range actions {
		a.apply(&out)
	}
	out.SavedAt = now
	return out
}
