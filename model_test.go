package pix3mf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRGB(t *testing.T) {
	c, err := ParseRGB("#1A2B3C")
	require.NoError(t, err)
	assert.Equal(t, RGB{0x1A, 0x2B, 0x3C}, c)
	assert.Equal(t, "#1A2B3C", c.Hex())

	c, err = ParseRGB("ff0000")
	require.NoError(t, err)
	assert.Equal(t, RGB{255, 0, 0}, c)

	_, err = ParseRGB("#fff")
	assert.Error(t, err)
	_, err = ParseRGB("zzzzzz")
	assert.Error(t, err)
}

func twoColorGrid() *DenseGrid {
	// Color 0 on the left half, color 1 on the right, 4x4 total.
	g := NewDenseGrid(4, 4, 2)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := Cell(0)
			if x >= 2 {
				c = 1
			}
			g.Set(x, y, c)
		}
	}
	return g
}

func TestBuildDeterministic(t *testing.T) {
	cfg := Config{Backend: BackendContour, Thickness: 2}
	a, err := Build(twoColorGrid(), cfg)
	require.NoError(t, err)
	b, err := Build(twoColorGrid(), cfg)
	require.NoError(t, err)

	diff := cmp.Diff(a, b, cmpopts.IgnoreUnexported(Mesh{}))
	assert.Empty(t, diff)
}

func TestBuildCentersOnBed(t *testing.T) {
	model, err := Build(twoColorGrid(), Config{Backend: BackendContour})
	require.NoError(t, err)
	require.Len(t, model.Layers, 2)

	// The 4x4mm footprint is centered on the default 250mm bed.
	assert.InDelta(t, 123.0, model.Offset.X, 1e-9)
	assert.InDelta(t, 123.0, model.Offset.Y, 1e-9)
	assert.InDelta(t, 0.0, model.Offset.Z, 1e-9)

	min, _, ok := model.Layers[0].Mesh.Bounds()
	require.True(t, ok)
	assert.InDelta(t, 123.0, min.X, 1e-9)
	assert.InDelta(t, 0.0, min.Z, 1e-9)
}

func TestBuildSandwich(t *testing.T) {
	model, err := Build(twoColorGrid(), Config{
		Backend:   BackendContour,
		Thickness: 2,
		Sandwich:  true,
	})
	require.NoError(t, err)
	require.Len(t, model.Layers, 2)

	backing, raised := model.Layers[0], model.Layers[1]
	assert.Equal(t, 0.0, backing.BaseZ)
	assert.Equal(t, 2.0, backing.TopZ)
	assert.Equal(t, 2.0, raised.BaseZ)
	assert.Equal(t, 4.0, raised.TopZ)

	min, max, ok := raised.Mesh.Bounds()
	require.True(t, ok)
	assert.InDelta(t, 2.0, min.Z, 1e-9)
	assert.InDelta(t, 4.0, max.Z, 1e-9)
}

func TestBuildSkipsEmptyColors(t *testing.T) {
	g := NewDenseGrid(2, 1, 3)
	g.Set(0, 0, 0)
	g.Set(1, 0, 2) // color 1 never appears

	model, err := Build(g, Config{Backend: BackendContour})
	require.NoError(t, err)
	require.Len(t, model.Layers, 2)
	assert.Equal(t, Cell(0), model.Layers[0].Color)
	assert.Equal(t, Cell(2), model.Layers[1].Color)

	// Unassigned materials fall back to gray with a 1-based name.
	assert.Equal(t, "1", model.Layers[0].Material.Name)
	assert.Equal(t, "3", model.Layers[1].Material.Name)
	assert.Equal(t, RGB{128, 128, 128}, model.Layers[0].Material.Color)
}

func TestBuildStrict(t *testing.T) {
	// The box backend leaves a T-junction on this concave region,
	// so the closedness check fails.
	g := NewDenseGrid(10, 10, 1)
	for _, c := range lShapeCells() {
		g.Set(c.X, c.Y, 0)
	}

	_, err := Build(g, Config{Backend: BackendBoxMerge, Strict: true})
	require.Error(t, err)
	var nm *NonManifoldError
	require.True(t, errors.As(err, &nm))
	assert.Equal(t, 0, nm.Color)

	// Without Strict the build completes and only logs.
	model, err := Build(g, Config{Backend: BackendBoxMerge})
	require.NoError(t, err)
	assert.Len(t, model.Layers, 1)
}

func TestModelStats(t *testing.T) {
	model, err := Build(twoColorGrid(), Config{Backend: BackendContour, Thickness: 2})
	require.NoError(t, err)

	stats := model.Stats()
	require.Len(t, stats, 2)
	for i, s := range stats {
		assert.Equal(t, i, s.Color)
		assert.Equal(t, len(model.Layers[i].Mesh.Vertices), s.Vertices)
		assert.Equal(t, len(model.Layers[i].Mesh.Triangles), s.Triangles)
		assert.InDelta(t, 16.0, s.Volume, 1e-9) // 2x4 px at 2mm thick
	}
}
