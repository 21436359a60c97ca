package pix3mf

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// A Rect is a half-open rectangle [X1,X2) x [Y1,Y2) in grid units.
type Rect struct {
	X1, Y1, X2, Y2 int
}

func (r Rect) Dx() int   { return r.X2 - r.X1 }
func (r Rect) Dy() int   { return r.Y2 - r.Y1 }
func (r Rect) Area() int { return r.Dx() * r.Dy() }

// DecomposeRects tiles the region with pairwise-disjoint rectangles
// whose union is exactly the region.
//
// The decomposition is greedy, not globally minimal (minimum
// rectangular cover is NP-hard): each round scans all uncovered
// cells in row-major order and grows a candidate rectangle at each,
// first rightward while cells remain in-region and uncovered, then
// downward one row at a time with the usable width shrunk to the
// narrowest row seen so far, keeping the largest area reached. The
// round's globally largest candidate is claimed; area ties go to the
// candidate found first in row-major order. Changing this tie-break
// changes output geometry for existing inputs, so it is load-bearing.
func DecomposeRects(region *Region) []Rect {
	b := region.Bounds()
	w, h := b.Dx(), b.Dy()
	uncovered := make([]bool, w*h)
	remaining := 0
	for _, c := range region.Cells {
		uncovered[(c.X-b.Min.X)+(c.Y-b.Min.Y)*w] = true
		remaining++
	}

	var rects []Rect
	for remaining > 0 {
		var best Rect
		bestArea := 0
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if !uncovered[x+y*w] {
					continue
				}
				cand, area := growRect(uncovered, w, h, x, y)
				if area > bestArea {
					best, bestArea = cand, area
				}
			}
		}
		for y := best.Y1; y < best.Y2; y++ {
			for x := best.X1; x < best.X2; x++ {
				uncovered[x+y*w] = false
				remaining--
			}
		}
		best.X1 += b.Min.X
		best.X2 += b.Min.X
		best.Y1 += b.Min.Y
		best.Y2 += b.Min.Y
		rects = append(rects, best)
	}
	return rects
}

// growRect finds the locally maximal rectangle anchored at (x, y):
// extend right, then down with shrinking width, tracking the running
// best area over the heights tried.
func growRect(uncovered []bool, w, h, x, y int) (Rect, int) {
	width := 0
	for x+width < w && uncovered[(x+width)+y*w] {
		width++
	}
	best := Rect{X1: x, Y1: y, X2: x + width, Y2: y + 1}
	bestArea := width
	for row := y + 1; row < h; row++ {
		rowWidth := 0
		for x+rowWidth < w && rowWidth < width && uncovered[(x+rowWidth)+row*w] {
			rowWidth++
		}
		if rowWidth == 0 {
			break
		}
		width = rowWidth
		if area := width * (row - y + 1); area > bestArea {
			best = Rect{X1: x, Y1: y, X2: x + width, Y2: row + 1}
			bestArea = area
		}
	}
	return best, bestArea
}

// BoxMesher extrudes the greedy rectangle decomposition of each
// region into axis-aligned boxes. With Chamfer set, every box
// becomes a prism with its vertical corner edges beveled in the XY
// plane by 15% of the shorter box side.
type BoxMesher struct {
	PixelSize float64
	Thickness float64
	Chamfer   bool
}

// chamferFraction of the shorter box dimension is cut off each
// beveled corner.
const chamferFraction = 0.15

func (b *BoxMesher) AddRegion(m *Mesh, region *Region) error {
	rects := DecomposeRects(region)
	logger().Debug("box-merge decomposition",
		"color", int(region.Color), "cells", len(region.Cells), "rects", len(rects))
	for _, rect := range rects {
		if b.Chamfer {
			b.addChamferedBox(m, rect)
		} else {
			b.addBox(m, rect)
		}
	}
	return nil
}

// addBox emits the fixed 12-triangle box template. The 8 corners go
// through the mesh's deduplication map so boxes sharing a face fuse.
func (b *BoxMesher) addBox(m *Mesh, r Rect) {
	x0, y0 := float64(r.X1)*b.PixelSize, float64(r.Y1)*b.PixelSize
	x1, y1 := float64(r.X2)*b.PixelSize, float64(r.Y2)*b.PixelSize
	z0, z1 := 0.0, b.Thickness

	p000 := m.VertexIndex(r3.Vec{X: x0, Y: y0, Z: z0})
	p100 := m.VertexIndex(r3.Vec{X: x1, Y: y0, Z: z0})
	p110 := m.VertexIndex(r3.Vec{X: x1, Y: y1, Z: z0})
	p010 := m.VertexIndex(r3.Vec{X: x0, Y: y1, Z: z0})
	p001 := m.VertexIndex(r3.Vec{X: x0, Y: y0, Z: z1})
	p101 := m.VertexIndex(r3.Vec{X: x1, Y: y0, Z: z1})
	p111 := m.VertexIndex(r3.Vec{X: x1, Y: y1, Z: z1})
	p011 := m.VertexIndex(r3.Vec{X: x0, Y: y1, Z: z1})

	m.AddQuad(p000, p010, p110, p100) // bottom, -z
	m.AddQuad(p001, p101, p111, p011) // top, +z
	m.AddQuad(p000, p100, p101, p001) // front, -y
	m.AddQuad(p110, p010, p011, p111) // back, +y
	m.AddQuad(p010, p000, p001, p011) // left, -x
	m.AddQuad(p100, p110, p111, p101) // right, +x
}

// addChamferedBox emits a 16-vertex prism with an octagonal cross
// section: two rings of 8 corners joined by 8 wall quads, with each
// octagon cap triangulated as a fan. The same deduplication path is
// used, so the manifold guarantee is unchanged.
func (b *BoxMesher) addChamferedBox(m *Mesh, r Rect) {
	x0, y0 := float64(r.X1)*b.PixelSize, float64(r.Y1)*b.PixelSize
	x1, y1 := float64(r.X2)*b.PixelSize, float64(r.Y2)*b.PixelSize
	z0, z1 := 0.0, b.Thickness

	short := x1 - x0
	if y1-y0 < short {
		short = y1 - y0
	}
	d := chamferFraction * short

	ring := [8]r3.Vec{
		{X: x0 + d, Y: y0},
		{X: x1 - d, Y: y0},
		{X: x1, Y: y0 + d},
		{X: x1, Y: y1 - d},
		{X: x1 - d, Y: y1},
		{X: x0 + d, Y: y1},
		{X: x0, Y: y1 - d},
		{X: x0, Y: y0 + d},
	}

	var bot, top [8]int
	for i, p := range ring {
		bot[i] = m.VertexIndex(r3.Vec{X: p.X, Y: p.Y, Z: z0})
		top[i] = m.VertexIndex(r3.Vec{X: p.X, Y: p.Y, Z: z1})
	}

	// Caps: fan triangulation, bottom wound -z, top wound +z.
	for i := 1; i < 7; i++ {
		m.AddTriangle(bot[0], bot[i+1], bot[i])
		m.AddTriangle(top[0], top[i], top[i+1])
	}
	// Walls.
	for i := 0; i < 8; i++ {
		j := (i + 1) % 8
		m.AddQuad(bot[i], bot[j], top[j], top[i])
	}
}
