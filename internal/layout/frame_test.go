package layout

import (
	"testing"

	"github.com/evanschultz/dockyard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFrameEqualWidthColumns(t *testing.T) {
	s := NewStore(StoreOptions{Capacity: 600})
	restoreColumn(t, s, testPanel(t, "A", 200, 0), testPanel(t, "B", 400, 1))
	_, err := s.AddColumn()
	require.NoError(t, err)

	f := ComputeFrame(s.Snapshot(), domain.Rect{W: 800, H: 600})
	require.Len(t, f.Columns, 2)
	assert.Equal(t, domain.Rect{X: 0, Y: 0, W: 400, H: 600}, f.Columns[0].Bounds)
	assert.Equal(t, domain.Rect{X: 400, Y: 0, W: 400, H: 600}, f.Columns[1].Bounds)

	require.Len(t, f.Columns[0].Panels, 2)
	assert.Equal(t, domain.Rect{X: 0, Y: 0, W: 400, H: 200}, f.Columns[0].Panels[0].Bounds)
	assert.Equal(t, domain.Rect{X: 0, Y: 200, W: 400, H: 400}, f.Columns[0].Panels[1].Bounds)
	assert.Empty(t, f.Columns[1].Panels)
}

func TestComputeFrameScalesToViewport(t *testing.T) {
	s := NewStore(StoreOptions{Capacity: 600})
	restoreColumn(t, s, testPanel(t, "A", 300, 0), testPanel(t, "B", 300, 1))

	f := ComputeFrame(s.Snapshot(), domain.Rect{X: 10, Y: 5, W: 100, H: 60})
	require.Len(t, f.Columns, 1)
	assert.InDelta(t, 30, f.Columns[0].Panels[0].Bounds.H, 1e-9)
	assert.InDelta(t, 35, f.Columns[0].Panels[1].Bounds.Y, 1e-9)
}

func TestComputeFrameEmptyViewport(t *testing.T) {
	s := NewStore(StoreOptions{})
	f := ComputeFrame(s.Snapshot(), domain.Rect{})
	assert.True(t, f.Empty())
	_, ok := f.PanelAt(domain.Point{})
	assert.False(t, ok)
}

func TestFrameHitTesting(t *testing.T) {
	s := NewStore(StoreOptions{Capacity: 600})
	restoreColumn(t, s, testPanel(t, "A", 300, 0), testPanel(t, "B", 300, 1))

	f := ComputeFrame(s.Snapshot(), domain.Rect{W: 200, H: 600})
	id, ok := f.PanelAt(domain.Point{X: 50, Y: 450})
	require.True(t, ok)
	assert.Equal(t, domain.PanelID("B"), id)

	_, ok = f.PanelAt(domain.Point{X: 250, Y: 10})
	assert.False(t, ok)

	col, ok := f.ColumnAt(199)
	require.True(t, ok)
	assert.Equal(t, 0, col.Index)

	r, ok := f.PanelBounds("A")
	require.True(t, ok)
	assert.InDelta(t, 300, r.H, 1e-9)
}
