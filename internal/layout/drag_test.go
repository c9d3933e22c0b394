package layout

import (
	"testing"

	"github.com/evanschultz/dockyard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dragFixture holds a store with A, B, C at 200 each in a 400x600 viewport per column.
type dragFixture struct {
	store    *Store
	viewport domain.Rect
}

func newDragFixture(t *testing.T, extraColumns int) *dragFixture {
	t.Helper()
	s := NewStore(StoreOptions{Capacity: 600})
	restoreColumn(t, s, testPanel(t, "A", 200, 0), testPanel(t, "B", 200, 1), testPanel(t, "C", 200, 2))
	for i := 0; i < extraColumns; i++ {
		_, err := s.AddColumn()
		require.NoError(t, err)
	}
	return &dragFixture{store: s, viewport: domain.Rect{W: 400 * float64(extraColumns+1), H: 600}}
}

func (f *dragFixture) frame() Frame {
	return ComputeFrame(f.store.Snapshot(), f.viewport)
}

func TestDragReordersWithinColumn(t *testing.T) {
	fx := newDragFixture(t, 0)
	d := NewDragController(fx.store, fx.frame, DragOptions{})

	require.True(t, d.BeginDrag("B", domain.Point{X: 100, Y: 300}))
	assert.Equal(t, DragDragging, d.State())
	assert.True(t, d.PointerMoved(domain.Point{X: 100, Y: 50}))

	session, ok := d.Session()
	require.True(t, ok)
	assert.Equal(t, DropTarget{Column: 0, Index: 0}, session.Candidate)
	assert.Equal(t, [][]string{{"A", "B", "C"}}, columnIDs(fx.store), "store changes only on release")

	res, err := d.EndDrag()
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, DropTarget{Column: 0, Index: 1}, res.From)
	assert.Equal(t, [][]string{{"B", "A", "C"}}, columnIDs(fx.store))
	assert.Equal(t, DragIdle, d.State())
	requireConsistent(t, fx.store)
}

func TestDragAcrossColumnsPicksNearestColumn(t *testing.T) {
	fx := newDragFixture(t, 1)
	d := NewDragController(fx.store, fx.frame, DragOptions{})

	require.True(t, d.BeginDrag("C", domain.Point{X: 100, Y: 500}))
	d.PointerMoved(domain.Point{X: 900, Y: 10})

	res, err := d.EndDrag()
	require.NoError(t, err)
	assert.Equal(t, DropTarget{Column: 1, Index: 0}, res.To)
	assert.Equal(t, [][]string{{"A", "B"}, {"C"}}, columnIDs(fx.store))
	requireConsistent(t, fx.store)
}

func TestDragTieBreakOnMidpoint(t *testing.T) {
	tests := []struct {
		name string
		tie  TieBreak
		want []string
	}{
		{name: "later", tie: TieLater, want: []string{"A", "C", "B"}},
		{name: "earlier", tie: TieEarlier, want: []string{"C", "A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newDragFixture(t, 0)
			d := NewDragController(fx.store, fx.frame, DragOptions{TieBreak: tt.tie})
			require.True(t, d.BeginDrag("C", domain.Point{X: 100, Y: 500}))
			// A's midpoint sits at y=100.
			d.PointerMoved(domain.Point{X: 100, Y: 100})
			_, err := d.EndDrag()
			require.NoError(t, err)
			assert.Equal(t, [][]string{tt.want}, columnIDs(fx.store))
		})
	}
}

func TestDragCancelLeavesLayoutUntouched(t *testing.T) {
	fx := newDragFixture(t, 1)
	ser := NewSerializer(nil)
	before, err := ser.Encode(fx.store.Snapshot())
	require.NoError(t, err)

	d := NewDragController(fx.store, fx.frame, DragOptions{})
	require.True(t, d.BeginDrag("A", domain.Point{X: 10, Y: 10}))
	d.PointerMoved(domain.Point{X: 600, Y: 300})
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	after, err := ser.Encode(fx.store.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	res, err := d.EndDrag()
	require.NoError(t, err)
	assert.False(t, res.Moved)
}

func TestDragThresholdHoldsSourceUntilExceeded(t *testing.T) {
	fx := newDragFixture(t, 0)
	calls := 0
	d := NewDragController(fx.store, fx.frame, DragOptions{
		Threshold:   5,
		OnCandidate: func(DragSession) { calls++ },
	})
	require.True(t, d.BeginDrag("C", domain.Point{X: 100, Y: 500}))

	assert.False(t, d.PointerMoved(domain.Point{X: 102, Y: 498}))
	assert.Equal(t, 0, calls)

	assert.True(t, d.PointerMoved(domain.Point{X: 100, Y: 10}))
	assert.Equal(t, 1, calls)
	// Returning near the origin stays armed.
	assert.True(t, d.PointerMoved(domain.Point{X: 100, Y: 499}))
	assert.Equal(t, 2, calls)
}

func TestDragRejectsSecondBeginAndUnknownPanel(t *testing.T) {
	fx := newDragFixture(t, 0)
	d := NewDragController(fx.store, fx.frame, DragOptions{})
	assert.False(t, d.BeginDrag("Z", domain.Point{}))
	require.True(t, d.BeginDrag("A", domain.Point{}))
	assert.False(t, d.BeginDrag("B", domain.Point{}))
	session, _ := d.Session()
	assert.Equal(t, domain.PanelID("A"), session.PanelID)
}

func TestDragDropOnOwnSlotDoesNotMove(t *testing.T) {
	fx := newDragFixture(t, 0)
	d := NewDragController(fx.store, fx.frame, DragOptions{})
	require.True(t, d.BeginDrag("B", domain.Point{X: 100, Y: 300}))
	d.PointerMoved(domain.Point{X: 110, Y: 310})
	res, err := d.EndDrag()
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, [][]string{{"A", "B", "C"}}, columnIDs(fx.store))
}

func TestDragCommitFailsWhenPanelVanished(t *testing.T) {
	fx := newDragFixture(t, 0)
	d := NewDragController(fx.store, fx.frame, DragOptions{})
	require.True(t, d.BeginDrag("B", domain.Point{X: 100, Y: 300}))
	d.PointerMoved(domain.Point{X: 100, Y: 590})
	_, err := fx.store.RemovePanel("B")
	require.NoError(t, err)

	_, err = d.EndDrag()
	require.ErrorIs(t, err, domain.ErrUnknownPanel)
	assert.Equal(t, DragIdle, d.State())
}

func TestResolveDropTargetEmptyFrame(t *testing.T) {
	_, ok := ResolveDropTarget(Frame{}, domain.Point{}, "A", TieLater)
	assert.False(t, ok)
}
