package pix3mf

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRegionsSplitsDisconnected(t *testing.T) {
	// Two islands of color 0 separated by background; diagonal
	// adjacency does not connect.
	g := NewDenseGrid(4, 4, 1)
	g.Set(0, 0, 0)
	g.Set(1, 0, 0)
	g.Set(1, 1, 0)
	g.Set(3, 2, 0)
	g.Set(2, 3, 0) // touches (3, 2) only diagonally

	regions := ExtractRegions(g, 0)
	require.Len(t, regions, 3)
	assert.Equal(t, []image.Point{{0, 0}, {1, 0}, {1, 1}}, regions[0].Cells)
	assert.Equal(t, []image.Point{{3, 2}}, regions[1].Cells)
	assert.Equal(t, []image.Point{{2, 3}}, regions[2].Cells)
}

func TestExtractRegionsDeterministicOrder(t *testing.T) {
	// BFS from the row-major seed visits up, left, right, down.
	g := NewDenseGrid(2, 2, 1)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			g.Set(x, y, 0)
		}
	}

	regions := ExtractRegions(g, 0)
	require.Len(t, regions, 1)
	assert.Equal(t, []image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, regions[0].Cells)
}

func TestExtractRegionsEmptyColor(t *testing.T) {
	g := NewDenseGrid(3, 3, 2)
	g.Set(1, 1, 0)

	assert.Empty(t, ExtractRegions(g, 1))
}

func TestRegionBounds(t *testing.T) {
	r := &Region{Cells: []image.Point{{2, 3}, {4, 1}, {3, 3}}}
	assert.Equal(t, image.Rect(2, 1, 5, 4), r.Bounds())
}
