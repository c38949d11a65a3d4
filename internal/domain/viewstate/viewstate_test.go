package viewstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/docsight/docsight/pkg/errors"
)

func TestDefault(t *testing.T) {
	s := Default("doc-1")

	assert.Equal(t, "doc-1", s.DocumentKey)
	assert.Equal(t, TabAnalysis, s.ActiveTab)
	assert.Equal(t, CardModeExpanded, s.CardMode)
	assert.Empty(t, s.Panels)
	assert.True(t, s.SavedAt.IsZero())
}

func TestApply_EachActionOwnsItsField(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	s := Default("doc-1")

	s = Apply(s, now,
		SetActiveTab{Tab: TabSWOT},
		SetCardMode{Mode: CardModeCompact},
		SetChartType{Tab: TabSWOT, Chart: ChartTypeRadar},
		SetCategoryFilters{Tab: TabInsights, Filters: []string{"financial", "legal"}},
		SetLevelFilters{Tab: TabAnalysis, Filters: []string{"high"}},
		SetDrawerOpen{Tab: TabDocument, Open: true},
	)

	assert.Equal(t, TabSWOT, s.ActiveTab)
	assert.Equal(t, CardModeCompact, s.CardMode)
	assert.Equal(t, ChartTypeRadar, s.Panel(TabSWOT).ChartType)
	assert.Equal(t, []string{"financial", "legal"}, s.Panel(TabInsights).CategoryFilters)
	assert.Equal(t, []string{"high"}, s.Panel(TabAnalysis).LevelFilters)
	assert.True(t, s.Panel(TabDocument).DrawerOpen)
	assert.Equal(t, now, s.SavedAt)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	now := time.Now()
	base := Default("doc-1")
	base = Apply(base, now, SetScroll{Tab: TabDocument, Snapshot: ScrollSnapshot{Top: 100, Percentage: 0.5}})

	_ = Apply(base, now.Add(time.Minute),
		SetScroll{Tab: TabDocument, Snapshot: ScrollSnapshot{Top: 900, Percentage: 0.9}},
		SetActiveTab{Tab: TabViewer},
	)

	assert.Equal(t, TabAnalysis, base.ActiveTab)
	require.NotNil(t, base.Panel(TabDocument).Scroll)
	assert.Equal(t, 100.0, base.Panel(TabDocument).Scroll.Top)
}

func TestApply_RejectsUnknownEnumValues(t *testing.T) {
	s := Default("doc-1")
	s = Apply(s, time.Now(),
		SetActiveTab{Tab: Tab("bogus")},
		SetCardMode{Mode: CardMode("bogus")},
	)

	assert.Equal(t, TabAnalysis, s.ActiveTab)
	assert.Equal(t, CardModeExpanded, s.CardMode)
}

func TestApply_ScrollOverwritesOnlyItsPanel(t *testing.T) {
	now := time.Now()
	s := Default("doc-1")
	s = Apply(s, now,
		SetScroll{Tab: TabDocument, Snapshot: ScrollSnapshot{Top: 10}},
		SetScroll{Tab: TabAnalysis, Snapshot: ScrollSnapshot{Top: 20}},
	)
	s = Apply(s, now, SetScroll{Tab: TabDocument, Snapshot: ScrollSnapshot{Top: 30}})

	require.NotNil(t, s.Panel(TabDocument).Scroll)
	require.NotNil(t, s.Panel(TabAnalysis).Scroll)
	assert.Equal(t, 30.0, s.Panel(TabDocument).Scroll.Top)
	assert.Equal(t, 20.0, s.Panel(TabAnalysis).Scroll.Top)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	s := Default("doc-1")
	s = Apply(s, now,
		SetActiveTab{Tab: TabInsights},
		SetChartType{Tab: TabSWOT, Chart: ChartTypePie},
		SetScroll{Tab: TabDocument, Snapshot: ScrollSnapshot{Top: 480, Percentage: 0.32, CapturedAt: now}},
	)

	data, err := Encode(s)
	require.NoError(t, err)

	got, err := Decode("doc-1", data)
	require.NoError(t, err)
	assert.Equal(t, s.ActiveTab, got.ActiveTab)
	assert.Equal(t, s.CardMode, got.CardMode)
	assert.Equal(t, ChartTypePie, got.Panel(TabSWOT).ChartType)
	require.NotNil(t, got.Panel(TabDocument).Scroll)
	assert.Equal(t, 480.0, got.Panel(TabDocument).Scroll.Top)
	assert.Equal(t, now, got.SavedAt)
}

func TestDecode_MissingFieldsKeepDefaults(t *testing.T) {
	got, err := Decode("doc-1", []byte(`{"active_tab":"swot"}`))
	require.NoError(t, err)

	assert.Equal(t, TabSWOT, got.ActiveTab)
	assert.Equal(t, CardModeExpanded, got.CardMode)
	assert.Empty(t, got.Panels)
}

func TestDecode_UnknownFieldsIgnored(t *testing.T) {
	got, err := Decode("doc-1", []byte(`{"card_mode":"compact","future_field":{"x":1}}`))
	require.NoError(t, err)
	assert.Equal(t, CardModeCompact, got.CardMode)
}

func TestDecode_InvalidEnumFallsBackToDefault(t *testing.T) {
	got, err := Decode("doc-1", []byte(`{"active_tab":"nonsense","card_mode":"nonsense"}`))
	require.NoError(t, err)
	assert.Equal(t, TabAnalysis, got.ActiveTab)
	assert.Equal(t, CardModeExpanded, got.CardMode)
}

func TestDecode_MalformedReturnsDefaultsAndError(t *testing.T) {
	got, err := Decode("doc-1", []byte(`{not json`))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeViewStateDecodeFailed, apperrors.CodeOf(err))
	assert.Equal(t, Default("doc-1").ActiveTab, got.ActiveTab)
}

func TestDecode_EmptyDataIsDefault(t *testing.T) {
	got, err := Decode("doc-1", nil)
	require.NoError(t, err)
	assert.Equal(t, Default("doc-1"), got)
}

func TestScrollSnapshot_FresherThan(t *testing.T) {
	now := time.Now()
	window := 6 * time.Hour

	tests := []struct {
		name string
		snap ScrollSnapshot
		want bool
	}{
		{"within window", ScrollSnapshot{CapturedAt: now.Add(-time.Hour)}, true},
		{"at boundary", ScrollSnapshot{CapturedAt: now.Add(-window)}, true},
		{"beyond window", ScrollSnapshot{CapturedAt: now.Add(-window - time.Second)}, false},
		{"zero time", ScrollSnapshot{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.FresherThan(now, window))
		})
	}
}
