package pix3mf

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// isoLevel is the threshold separating solid from empty samples.
const isoLevel = 0.5

// A ScalarField is a 3D scalar occupancy volume sampled on a regular
// lattice, values in [0, 1].
type ScalarField struct {
	NX, NY, NZ int

	values []float64
}

// NewScalarField creates a zero-valued field of the given dimensions.
func NewScalarField(nx, ny, nz int) *ScalarField {
	return &ScalarField{NX: nx, NY: ny, NZ: nz, values: make([]float64, nx*ny*nz)}
}

// At gets the exact value at integer coordinates.
// If a coordinate is out of bounds, 0 is returned.
func (f *ScalarField) At(x, y, z int) float64 {
	if x < 0 || y < 0 || z < 0 || x >= f.NX || y >= f.NY || z >= f.NZ {
		return 0
	}
	return f.values[x+f.NX*(y+z*f.NY)]
}

// Set assigns the value at integer coordinates. Out-of-bounds
// coordinates are ignored.
func (f *ScalarField) Set(x, y, z int, v float64) {
	if x < 0 || y < 0 || z < 0 || x >= f.NX || y >= f.NY || z >= f.NZ {
		return
	}
	f.values[x+f.NX*(y+z*f.NY)] = v
}

// MarchingMesher extracts each region's surface by marching cubes
// over the 2D mask lifted to an occupancy volume of the configured
// thickness.
//
// This backend does not merge coplanar faces, so it produces far
// more triangles than box-merge or contour extrusion on blocky
// input. Use it only when smooth, curved isosurfaces are wanted.
type MarchingMesher struct {
	PixelSize float64
	Thickness float64
}

func (mm *MarchingMesher) AddRegion(m *Mesh, region *Region) error {
	zCells := int(math.Round(mm.Thickness / mm.PixelSize))
	if zCells < 1 {
		zCells = 1
	}
	dz := mm.Thickness / float64(zCells)

	// One empty sample of padding on all six sides, so the surface
	// always closes.
	b := region.Bounds()
	field := NewScalarField(b.Dx()+2, b.Dy()+2, zCells+2)
	for _, c := range region.Cells {
		for k := 0; k < zCells; k++ {
			field.Set(c.X-b.Min.X+1, c.Y-b.Min.Y+1, k+1, 1)
		}
	}

	origin := r3.Vec{
		X: (float64(b.Min.X) - 0.5) * mm.PixelSize,
		Y: (float64(b.Min.Y) - 0.5) * mm.PixelSize,
		Z: -0.5 * dz,
	}
	cell := r3.Vec{X: mm.PixelSize, Y: mm.PixelSize, Z: dz}
	before := len(m.Triangles)
	MarchingCubes(m, field, isoLevel, origin, cell)
	logger().Debug("marching cubes surface",
		"color", int(region.Color), "cells", len(region.Cells),
		"triangles", len(m.Triangles)-before)
	return nil
}

// Offsets of the eight cube corners, in table order: 0-3 around the
// bottom face, 4-7 around the top.
var cubeCorners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// The two corners joined by each of the twelve cube edges.
var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// MarchingCubes runs classic marching cubes over the field at the
// given iso-value and appends the surface triangles to the mesh.
// Sample (i, j, k) sits at origin plus the componentwise product of
// (i, j, k) and cell.
//
// Crossing positions on shared cube edges interpolate to identical
// coordinates, so the mesh's deduplication map stitches neighboring
// cubes together.
func MarchingCubes(m *Mesh, f *ScalarField, iso float64, origin, cell r3.Vec) {
	samplePos := func(x, y, z int) r3.Vec {
		return r3.Vec{
			X: origin.X + float64(x)*cell.X,
			Y: origin.Y + float64(y)*cell.Y,
			Z: origin.Z + float64(z)*cell.Z,
		}
	}

	var vals [8]float64
	var pos [8]r3.Vec
	var crossings [12]r3.Vec
	for z := 0; z < f.NZ-1; z++ {
		for y := 0; y < f.NY-1; y++ {
			for x := 0; x < f.NX-1; x++ {
				cubeIndex := 0
				for i, c := range cubeCorners {
					vals[i] = f.At(x+c[0], y+c[1], z+c[2])
					pos[i] = samplePos(x+c[0], y+c[1], z+c[2])
					if vals[i] < iso {
						cubeIndex |= 1 << i
					}
				}
				edgeMask := edgeTable[cubeIndex]
				if edgeMask == 0 {
					continue
				}
				for e, corners := range cubeEdges {
					if edgeMask&(1<<e) == 0 {
						continue
					}
					crossings[e] = interpCrossing(iso,
						pos[corners[0]], pos[corners[1]],
						vals[corners[0]], vals[corners[1]])
				}
				row := triTable[cubeIndex]
				for i := 0; row[i] >= 0; i += 3 {
					m.AddTriangleCoords(
						crossings[row[i]],
						crossings[row[i+1]],
						crossings[row[i+2]])
				}
			}
		}
	}
}

// interpCrossing linearly interpolates the iso crossing between two
// corner samples. If the corner values are equal within an epsilon,
// the first corner is returned to avoid a division by zero.
func interpCrossing(iso float64, p1, p2 r3.Vec, v1, v2 float64) r3.Vec {
	if math.Abs(v2-v1) < 1e-12 {
		return p1
	}
	t := (iso - v1) / (v2 - v1)
	return r3.Add(p1, r3.Scale(t, r3.Sub(p2, p1)))
}
