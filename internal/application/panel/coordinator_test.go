package panel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/internal/testutil"
)

func testCollections() map[Collection][]Item {
	return map[Collection][]Item{
		CollectionInsights: {
			{AnnotationID: "insight-0", Text: "Revenue grew"},
			{AnnotationID: "insight-1", Text: "Margins expanded"},
			{AnnotationID: "insight-2", Text: "Churn fell"},
		},
		CollectionRisks: {
			{AnnotationID: "risk-0", Text: "Key customer concentration"},
			{AnnotationID: "risk-1", Text: "Pending litigation"},
		},
		CollectionStrengths: {
			{Text: "Strong brand"},
			{Text: "Recurring revenue"},
		},
		CollectionThreats: {},
	}
}

func newCoordinator() *Coordinator {
	return NewCoordinator(testCollections(), DefaultGestureConfig(), testutil.NewMockLogger())
}

func TestCoordinator_SelectFromDocumentActivatesAndJumps(t *testing.T) {
	c := newCoordinator()

	col, idx, err := c.SelectFromDocument("insight-2")

	require.NoError(t, err)
	assert.Equal(t, CollectionInsights, col)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "insight-2", c.ActiveID())
	assert.Equal(t, 2, c.Index(CollectionInsights))
	assert.True(t, c.ManuallyNavigated(CollectionInsights))
}

func TestCoordinator_SelectSameAnnotationTogglesOff(t *testing.T) {
	c := newCoordinator()
	_, _, err := c.SelectFromDocument("risk-1")
	require.NoError(t, err)

	_, _, err = c.SelectFromDocument("risk-1")

	require.NoError(t, err)
	assert.Empty(t, c.ActiveID())
	// The collection stays where the first selection put it.
	assert.Equal(t, 1, c.Index(CollectionRisks))
}

func TestCoordinator_SelectUnknownAnnotation(t *testing.T) {
	c := newCoordinator()
	_, _, err := c.SelectFromDocument("insight-99")
	assert.Error(t, err)
}

func TestCoordinator_NavigateClampsAtBothEnds(t *testing.T) {
	c := newCoordinator()

	idx, err := c.Navigate(CollectionInsights, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = c.Navigate(CollectionInsights, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestCoordinator_NavigateAwayClearsHighlight(t *testing.T) {
	c := newCoordinator()
	_, _, err := c.SelectFromDocument("insight-1")
	require.NoError(t, err)

	_, err = c.Navigate(CollectionInsights, 1)
	require.NoError(t, err)

	assert.Empty(t, c.ActiveID())
}

func TestCoordinator_NavigateOtherCollectionClearsHighlight(t *testing.T) {
	c := newCoordinator()
	_, _, err := c.SelectFromDocument("insight-1")
	require.NoError(t, err)

	// The highlight is shared, so moving the risks carousel onto a card
	// that is not the active annotation drops it too.
	_, err = c.Navigate(CollectionRisks, 1)
	require.NoError(t, err)

	assert.Empty(t, c.ActiveID())
}

func TestCoordinator_JumpTo(t *testing.T) {
	c := newCoordinator()

	idx, err := c.JumpTo(CollectionRisks, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = c.JumpTo(CollectionRisks, 99)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = c.JumpTo(Collection("nope"), 0)
	assert.Error(t, err)
}

func TestCoordinator_EmptyCollectionNavigation(t *testing.T) {
	c := newCoordinator()

	idx, err := c.Navigate(CollectionThreats, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	_, ok := c.CurrentItem(CollectionThreats)
	assert.False(t, ok)
}

func TestCoordinator_Accessors(t *testing.T) {
	c := newCoordinator()

	assert.Equal(t, 3, c.Total(CollectionInsights))
	assert.Equal(t, 0, c.Total(CollectionThreats))

	item, ok := c.CurrentItem(CollectionRisks)
	require.True(t, ok)
	assert.Equal(t, "risk-0", item.AnnotationID)

	assert.Equal(t, 0.0, c.Progress(CollectionInsights))
	_, err := c.JumpTo(CollectionInsights, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c.Progress(CollectionInsights), 1e-9)

	// Single-card and empty collections report zero progress.
	assert.Equal(t, 0.0, c.Progress(CollectionThreats))
}

func TestCoordinator_SwipeAdvances(t *testing.T) {
	c := newCoordinator()
	start := time.Now()

	require.NoError(t, c.BeginDrag(CollectionInsights, 200, 300, start))
	progress := c.UpdateDrag(CollectionInsights, 175, 302)
	assert.InDelta(t, 0.5, progress, 1e-9)

	idx, moved := c.EndDrag(CollectionInsights, 140, 305, start.Add(200*time.Millisecond))

	assert.True(t, moved)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 0.0, c.DragProgress(CollectionInsights))
}

func TestCoordinator_SwipeRightGoesBack(t *testing.T) {
	c := newCoordinator()
	_, err := c.JumpTo(CollectionInsights, 2)
	require.NoError(t, err)
	start := time.Now()

	require.NoError(t, c.BeginDrag(CollectionInsights, 100, 300, start))
	idx, moved := c.EndDrag(CollectionInsights, 160, 300, start.Add(100*time.Millisecond))

	assert.True(t, moved)
	assert.Equal(t, 1, idx)
}

func TestCoordinator_VerticalDragDoesNotNavigate(t *testing.T) {
	c := newCoordinator()
	start := time.Now()

	// Mostly-vertical movement is scrolling, even with enough x travel.
	require.NoError(t, c.BeginDrag(CollectionInsights, 200, 100, start))
	idx, moved := c.EndDrag(CollectionInsights, 140, 300, start.Add(100*time.Millisecond))

	assert.False(t, moved)
	assert.Equal(t, 0, idx)
}

func TestCoordinator_ShortDragDoesNotNavigate(t *testing.T) {
	c := newCoordinator()
	start := time.Now()

	require.NoError(t, c.BeginDrag(CollectionInsights, 200, 300, start))
	idx, moved := c.EndDrag(CollectionInsights, 180, 300, start.Add(100*time.Millisecond))

	assert.False(t, moved)
	assert.Equal(t, 0, idx)
}

func TestCoordinator_SlowDragDoesNotNavigate(t *testing.T) {
	c := newCoordinator()
	start := time.Now()

	require.NoError(t, c.BeginDrag(CollectionInsights, 200, 300, start))
	idx, moved := c.EndDrag(CollectionInsights, 100, 300, start.Add(2*time.Second))

	assert.False(t, moved)
	assert.Equal(t, 0, idx)
}

func TestCoordinator_SwipeAtBoundaryDoesNotMove(t *testing.T) {
	c := newCoordinator()
	start := time.Now()

	// Swiping back from the first card clamps in place.
	require.NoError(t, c.BeginDrag(CollectionInsights, 100, 300, start))
	idx, moved := c.EndDrag(CollectionInsights, 200, 300, start.Add(100*time.Millisecond))

	assert.False(t, moved)
	assert.Equal(t, 0, idx)
}

func TestCoordinator_EndDragWithoutBegin(t *testing.T) {
	c := newCoordinator()
	idx, moved := c.EndDrag(CollectionInsights, 100, 0, time.Now())
	assert.False(t, moved)
	assert.Equal(t, 0, idx)
}

func TestCoordinator_DragsTrackedPerCollection(t *testing.T) {
	c := newCoordinator()
	start := time.Now()

	require.NoError(t, c.BeginDrag(CollectionInsights, 200, 300, start))
	require.NoError(t, c.BeginDrag(CollectionRisks, 400, 300, start))

	c.UpdateDrag(CollectionInsights, 175, 300)
	c.UpdateDrag(CollectionRisks, 390, 300)
	assert.InDelta(t, 0.5, c.DragProgress(CollectionInsights), 1e-9)
	assert.InDelta(t, 0.2, c.DragProgress(CollectionRisks), 1e-9)

	// Finishing one drag leaves the other in flight.
	idx, moved := c.EndDrag(CollectionInsights, 140, 300, start.Add(100*time.Millisecond))
	assert.True(t, moved)
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 0.2, c.DragProgress(CollectionRisks), 1e-9)

	idx, moved = c.EndDrag(CollectionRisks, 330, 300, start.Add(200*time.Millisecond))
	assert.True(t, moved)
	assert.Equal(t, 1, idx)
}

func TestCoordinator_SetCollectionsClampsIndexIntoNewBounds(t *testing.T) {
	c := newCoordinator()
	_, err := c.JumpTo(CollectionInsights, 2)
	require.NoError(t, err)

	c.SetCollections(map[Collection][]Item{
		CollectionInsights: {{AnnotationID: "insight-0", Text: "Revenue grew"}},
		CollectionRisks:    {{AnnotationID: "risk-0", Text: "Key customer concentration"}},
	})

	assert.Equal(t, 1, c.Total(CollectionInsights))
	assert.Equal(t, 0, c.Index(CollectionInsights))
	item, ok := c.CurrentItem(CollectionInsights)
	require.True(t, ok)
	assert.Equal(t, "insight-0", item.AnnotationID)
	// The position was user-driven and stays marked as such.
	assert.True(t, c.ManuallyNavigated(CollectionInsights))
}

func TestCoordinator_SetCollectionsKeepsInRangePositions(t *testing.T) {
	c := newCoordinator()
	_, _, err := c.SelectFromDocument("risk-1")
	require.NoError(t, err)

	c.SetCollections(testCollections())

	assert.Equal(t, "risk-1", c.ActiveID())
	assert.Equal(t, 1, c.Index(CollectionRisks))
}

func TestCoordinator_SetCollectionsDropsVanishedHighlight(t *testing.T) {
	c := newCoordinator()
	_, _, err := c.SelectFromDocument("insight-2")
	require.NoError(t, err)

	c.SetCollections(map[Collection][]Item{
		CollectionInsights: {
			{AnnotationID: "insight-0", Text: "Revenue grew"},
			{AnnotationID: "insight-1", Text: "Margins expanded"},
		},
	})

	assert.Empty(t, c.ActiveID())
	assert.Equal(t, 1, c.Index(CollectionInsights))
	assert.Equal(t, 0, c.Total(CollectionRisks))
}

func TestCoordinator_ResetClearsEverything(t *testing.T) {
	c := newCoordinator()
	_, _, err := c.SelectFromDocument("insight-1")
	require.NoError(t, err)

	c.Reset(map[Collection][]Item{
		CollectionInsights: {{AnnotationID: "insight-0", Text: "Other doc"}},
	})

	assert.Empty(t, c.ActiveID())
	assert.Equal(t, 0, c.Index(CollectionInsights))
	assert.False(t, c.ManuallyNavigated(CollectionInsights))
	assert.Equal(t, 1, c.Total(CollectionInsights))
}
