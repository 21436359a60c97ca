package pix3mf

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarFieldBounds(t *testing.T) {
	f := NewScalarField(2, 2, 2)
	f.Set(1, 1, 1, 0.75)
	f.Set(2, 0, 0, 1) // ignored

	assert.Equal(t, 0.75, f.At(1, 1, 1))
	assert.Equal(t, 0.0, f.At(0, 0, 0))
	assert.Equal(t, 0.0, f.At(-1, 0, 0))
	assert.Equal(t, 0.0, f.At(0, 0, 2))
}

func TestMarchingSingleCell(t *testing.T) {
	mm := &MarchingMesher{PixelSize: 1, Thickness: 2}
	m := NewMesh()
	require.NoError(t, mm.AddRegion(m, regionFromCells([]image.Point{{0, 0}})))

	require.NoError(t, m.CheckClosed())
	assert.Len(t, m.Triangles, 16)

	// An octahedron-like solid spanning one sample in each
	// direction: all iso crossings sit half a cell from the single
	// solid sample column.
	assert.InDelta(t, 2.0/3.0, m.Volume(), 1e-9)
}

func TestMarchingSquareRegion(t *testing.T) {
	cells := []image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	mm := &MarchingMesher{PixelSize: 1, Thickness: 2}
	m := NewMesh()
	require.NoError(t, mm.AddRegion(m, regionFromCells(cells)))

	require.NoError(t, m.CheckClosed())
	assert.Len(t, m.Triangles, 44)
	assert.Len(t, m.Vertices, 24)
	assert.InDelta(t, 17.0/3.0, m.Volume(), 1e-9)

	// Crossings sit midway between the outermost solid samples and
	// the empty padding, which is exactly the pixel-grid footprint.
	min, max, ok := m.Bounds()
	require.True(t, ok)
	assert.InDelta(t, 0.0, min.X, 1e-9)
	assert.InDelta(t, 2.0, max.X, 1e-9)
	assert.InDelta(t, 0.0, min.Z, 1e-9)
	assert.InDelta(t, 2.0, max.Z, 1e-9)
}

func TestMarchingThinLayer(t *testing.T) {
	// Thickness below one pixel still produces at least one solid
	// sample layer.
	mm := &MarchingMesher{PixelSize: 1, Thickness: 0.25}
	m := NewMesh()
	require.NoError(t, mm.AddRegion(m, regionFromCells([]image.Point{{0, 0}, {1, 0}})))

	require.NoError(t, m.CheckClosed())
	assert.Greater(t, m.Volume(), 0.0)
}
