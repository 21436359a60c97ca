package pix3mf

import (
	"image"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ContourMesher builds each region's mesh from its traced boundary
// instead of per-pixel boxes: boundary corners are chained into
// closed loops, simplified, triangulated by ear clipping, and
// extruded. This keeps triangle counts low for large uniform or
// curved shapes while preserving concavity.
type ContourMesher struct {
	PixelSize float64
	Thickness float64
}

// geomEps is the tolerance for colinearity and convexity tests on
// scaled (millimeter) coordinates.
const geomEps = 1e-9

type point2 struct {
	X, Y float64
}

func (c *ContourMesher) AddRegion(m *Mesh, region *Region) error {
	loops := traceLoops(region)
	if len(loops) == 0 {
		return errors.New("contour: region produced no boundary loops")
	}

	var outer []point2
	var holes [][]point2
	simplified := make([][]point2, 0, len(loops))
	for _, loop := range loops {
		pts := c.scaleLoop(simplifyLoop(loop))
		if len(pts) < 3 {
			continue
		}
		simplified = append(simplified, pts)
		if signedArea(pts) > 0 {
			// A 4-connected region has exactly one outer loop.
			outer = pts
		} else {
			holes = append(holes, pts)
		}
	}
	if outer == nil {
		return errors.New("contour: region has no outer boundary loop")
	}

	// Bridge holes rightmost-first so each bridge ray only passes
	// over geometry already spliced into the polygon.
	sort.SliceStable(holes, func(i, j int) bool {
		return rightmostX(holes[i]) > rightmostX(holes[j])
	})
	poly := outer
	for _, hole := range holes {
		poly = bridgeHole(poly, hole)
	}

	tris, fellBack := earClipPolygon(poly)
	if fellBack {
		logger().Warn("ear clipping failed, fell back to fan triangulation",
			"color", int(region.Color), "vertices", len(poly))
	}

	z0, z1 := 0.0, c.Thickness

	// Front and back caps share one triangulation with opposite
	// windings.
	for _, t := range tris {
		a, b, c2 := poly[t[0]], poly[t[1]], poly[t[2]]
		m.AddTriangleCoords(
			r3.Vec{X: a.X, Y: a.Y, Z: z0},
			r3.Vec{X: c2.X, Y: c2.Y, Z: z0},
			r3.Vec{X: b.X, Y: b.Y, Z: z0})
		m.AddTriangleCoords(
			r3.Vec{X: a.X, Y: a.Y, Z: z1},
			r3.Vec{X: b.X, Y: b.Y, Z: z1},
			r3.Vec{X: c2.X, Y: c2.Y, Z: z1})
	}

	// Side walls: one quad per loop edge, connecting corresponding
	// front and back vertices. Walls come from the traced loops, not
	// the bridged polygon, so bridge edges never grow walls.
	for _, pts := range simplified {
		for i := range pts {
			e0, e1 := pts[i], pts[(i+1)%len(pts)]
			b0 := m.VertexIndex(r3.Vec{X: e0.X, Y: e0.Y, Z: z0})
			b1 := m.VertexIndex(r3.Vec{X: e1.X, Y: e1.Y, Z: z0})
			t1 := m.VertexIndex(r3.Vec{X: e1.X, Y: e1.Y, Z: z1})
			t0 := m.VertexIndex(r3.Vec{X: e0.X, Y: e0.Y, Z: z1})
			m.AddQuad(b0, b1, t1, t0)
		}
	}
	return nil
}

func (c *ContourMesher) scaleLoop(loop []image.Point) []point2 {
	pts := make([]point2, len(loop))
	for i, p := range loop {
		pts[i] = point2{X: float64(p.X) * c.PixelSize, Y: float64(p.Y) * c.PixelSize}
	}
	return pts
}

// traceLoops extracts the region's boundary as closed loops of
// pixel-corner points. For every region cell with an out-of-region
// 4-neighbor, a directed unit edge is emitted along that side with
// the region interior on its left; chaining the edges corner to
// corner yields the loops. The outer loop comes out with positive
// signed area and hole loops negative.
//
// At a corner where four boundary edges meet (diagonally touching
// cells, the checkerboard pattern) the continuation is ambiguous.
// The tracer takes the first unused edge in emission order, which
// splits the figure into separate loops. This mirrors the analyzed
// behavior and is deliberately not disambiguated further; see the
// checkerboard fixture test.
func traceLoops(region *Region) [][]image.Point {
	b := region.Bounds()
	w := b.Dx()
	inRegion := make([]bool, w*b.Dy())
	for _, c := range region.Cells {
		inRegion[(c.X-b.Min.X)+(c.Y-b.Min.Y)*w] = true
	}
	contains := func(p image.Point) bool {
		x, y := p.X-b.Min.X, p.Y-b.Min.Y
		if x < 0 || y < 0 || x >= w || y >= b.Dy() {
			return false
		}
		return inRegion[x+y*w]
	}

	type edge struct {
		from, to image.Point
		used     bool
	}
	var edges []edge
	outgoing := map[image.Point][]int{}
	emit := func(from, to image.Point) {
		outgoing[from] = append(outgoing[from], len(edges))
		edges = append(edges, edge{from: from, to: to})
	}
	for _, c := range region.Cells {
		if !contains(image.Pt(c.X, c.Y-1)) {
			emit(image.Pt(c.X, c.Y), image.Pt(c.X+1, c.Y))
		}
		if !contains(image.Pt(c.X+1, c.Y)) {
			emit(image.Pt(c.X+1, c.Y), image.Pt(c.X+1, c.Y+1))
		}
		if !contains(image.Pt(c.X, c.Y+1)) {
			emit(image.Pt(c.X+1, c.Y+1), image.Pt(c.X, c.Y+1))
		}
		if !contains(image.Pt(c.X-1, c.Y)) {
			emit(image.Pt(c.X, c.Y+1), image.Pt(c.X, c.Y))
		}
	}

	var loops [][]image.Point
	for i := range edges {
		if edges[i].used {
			continue
		}
		edges[i].used = true
		start := edges[i].from
		loop := []image.Point{start}
		cur := edges[i].to
		for cur != start {
			loop = append(loop, cur)
			next := -1
			for _, j := range outgoing[cur] {
				if !edges[j].used {
					next = j
					break
				}
			}
			if next < 0 {
				// Cannot happen for a well-formed mask: every corner
				// has balanced in/out degree.
				logger().Warn("boundary trace dead-ended", "corner", cur)
				break
			}
			edges[next].used = true
			cur = edges[next].to
		}
		loops = append(loops, loop)
	}
	return loops
}

// simplifyLoop drops points colinear with both neighbors, leaving
// only the corners where the boundary changes direction. The cross
// products are exact on integer lattice points.
func simplifyLoop(loop []image.Point) []image.Point {
	n := len(loop)
	out := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		prev := loop[(i+n-1)%n]
		cur := loop[i]
		next := loop[(i+1)%n]
		cross := (cur.X-prev.X)*(next.Y-cur.Y) - (cur.Y-prev.Y)*(next.X-cur.X)
		if cross != 0 {
			out = append(out, cur)
		}
	}
	return out
}

func rightmostX(pts []point2) float64 {
	max := math.Inf(-1)
	for _, p := range pts {
		if p.X > max {
			max = p.X
		}
	}
	return max
}

func signedArea(pts []point2) float64 {
	var sum float64
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// bridgeHole splices a hole loop into the polygon via a two-way
// bridge edge, so a single simple boundary remains for ear clipping.
// The bridge anchors at the hole's rightmost vertex and connects to
// a visible polygon vertex found by casting a ray in +x.
func bridgeHole(poly, hole []point2) []point2 {
	mi := 0
	for i, p := range hole {
		if p.X > hole[mi].X {
			mi = i
		}
	}
	M := hole[mi]

	// A polygon vertex lying exactly on the rightward ray from M is
	// the closest visible candidate unless an edge crossing beats it.
	bestX := math.Inf(1)
	bridge := -1
	for i, p := range poly {
		if math.Abs(p.Y-M.Y) < geomEps && p.X > M.X+geomEps && p.X < bestX {
			bestX = p.X
			bridge = i
		}
	}

	// Nearest polygon edge crossed by the ray.
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		if (a.Y > M.Y) == (b.Y > M.Y) {
			continue
		}
		ix := a.X + (M.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if ix < M.X-geomEps || ix >= bestX {
			continue
		}
		bestX = ix
		// Prefer the endpoint with the larger X; on vertical edges,
		// the one closer to the ray.
		if a.X > b.X || (a.X == b.X && math.Abs(a.Y-M.Y) <= math.Abs(b.Y-M.Y)) {
			bridge = i
		} else {
			bridge = (i + 1) % len(poly)
		}
	}
	if bridge < 0 {
		// Hole outside the polygon; drop it rather than fail.
		logger().Warn("could not bridge hole into outer boundary", "holeVertices", len(hole))
		return poly
	}

	// If another polygon vertex sits inside or on the triangle formed
	// by M, the ray hit, and the candidate, it occludes the bridge;
	// reconnect to the occluder nearest to M. On-edge points count: a
	// vertex exactly on the bridge segment must become the anchor.
	I := point2{X: bestX, Y: M.Y}
	for i, p := range poly {
		if i == bridge || p.X < M.X {
			continue
		}
		if pointInTriangleIncl(p, M, I, poly[bridge]) || pointInTriangleIncl(p, poly[bridge], I, M) {
			dNew := (p.X-M.X)*(p.X-M.X) + (p.Y-M.Y)*(p.Y-M.Y)
			q := poly[bridge]
			dOld := (q.X-M.X)*(q.X-M.X) + (q.Y-M.Y)*(q.Y-M.Y)
			if dNew < dOld {
				bridge = i
			}
		}
	}

	// Earlier bridges can pinch the polygon at the anchor coordinate,
	// leaving several copies of it. Splice into the copy whose
	// interior angular sector faces the hole vertex, otherwise the
	// polygon stops being weakly simple.
	tgt := poly[bridge]
	dir := point2{X: M.X - tgt.X, Y: M.Y - tgt.Y}
	for j, p := range poly {
		if math.Abs(p.X-tgt.X) < geomEps && math.Abs(p.Y-tgt.Y) < geomEps && sectorContains(poly, j, dir) {
			bridge = j
			break
		}
	}

	out := make([]point2, 0, len(poly)+len(hole)+2)
	out = append(out, poly[:bridge+1]...)
	for k := 0; k <= len(hole); k++ {
		out = append(out, hole[(mi+k)%len(hole)])
	}
	out = append(out, poly[bridge:]...)
	return out
}

// earClipPolygon triangulates a simple polygon (counterclockwise,
// positive signed area) by ear clipping. If at some point no ear
// exists, the remaining polygon is fan-triangulated from its first
// vertex and the second return value is true; the caller logs the
// degradation instead of failing.
func earClipPolygon(pts []point2) ([][3]int, bool) {
	rem := make([]int, len(pts))
	for i := range rem {
		rem[i] = i
	}

	var tris [][3]int
	fellBack := false
	for len(rem) > 3 {
		// A vertex lying exactly on an ear's edge would leave a
		// T-junction in the cap, so on-edge points block an ear in
		// the first pass. That can over-reject on pinched bridge
		// polygons; the second pass counts only strictly interior
		// blockers.
		earAt := findEar(pts, rem, pointInTriangleIncl)
		if earAt < 0 {
			earAt = findEar(pts, rem, pointInTriangle)
		}
		if earAt < 0 {
			fellBack = true
			for k := 1; k+1 < len(rem); k++ {
				tris = append(tris, [3]int{rem[0], rem[k], rem[k+1]})
			}
			return tris, fellBack
		}
		n := len(rem)
		tris = append(tris, [3]int{
			rem[(earAt+n-1)%n], rem[earAt], rem[(earAt+1)%n],
		})
		rem = append(rem[:earAt], rem[earAt+1:]...)
	}
	tris = append(tris, [3]int{rem[0], rem[1], rem[2]})
	return tris, fellBack
}

// findEar returns the index in rem of a convex corner whose triangle
// contains no other remaining vertex per the blocks predicate, or -1.
func findEar(pts []point2, rem []int, blocks func(p, a, b, c point2) bool) int {
	n := len(rem)
	for k := range rem {
		prev := pts[rem[(k+n-1)%n]]
		cur := pts[rem[k]]
		next := pts[rem[(k+1)%n]]
		cross := (cur.X-prev.X)*(next.Y-cur.Y) - (cur.Y-prev.Y)*(next.X-cur.X)
		if cross <= geomEps {
			continue // reflex or flat corner
		}
		blocked := false
		for j := range rem {
			if j == k || j == (k+1)%n || j == (k+n-1)%n {
				continue
			}
			if blocks(pts[rem[j]], prev, cur, next) {
				blocked = true
				break
			}
		}
		if !blocked {
			return k
		}
	}
	return -1
}

// pointInTriangle reports whether p lies strictly inside the
// triangle (a, b, c). Points on edges or at corners do not count,
// so duplicated bridge vertices never block an ear.
func pointInTriangle(p, a, b, c point2) bool {
	d1 := (p.X-a.X)*(b.Y-a.Y) - (p.Y-a.Y)*(b.X-a.X)
	d2 := (p.X-b.X)*(c.Y-b.Y) - (p.Y-b.Y)*(c.X-b.X)
	d3 := (p.X-c.X)*(a.Y-c.Y) - (p.Y-c.Y)*(a.X-c.X)
	return (d1 < -geomEps && d2 < -geomEps && d3 < -geomEps) ||
		(d1 > geomEps && d2 > geomEps && d3 > geomEps)
}

// pointInTriangleIncl reports whether p lies inside or on the
// boundary of the counterclockwise triangle (a, b, c). Points that
// coincide with a corner do not count.
func pointInTriangleIncl(p, a, b, c point2) bool {
	for _, q := range [...]point2{a, b, c} {
		if math.Abs(p.X-q.X) < geomEps && math.Abs(p.Y-q.Y) < geomEps {
			return false
		}
	}
	d1 := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	d2 := (c.X-b.X)*(p.Y-b.Y) - (c.Y-b.Y)*(p.X-b.X)
	d3 := (a.X-c.X)*(p.Y-c.Y) - (a.Y-c.Y)*(p.X-c.X)
	return d1 >= -geomEps && d2 >= -geomEps && d3 >= -geomEps
}

// sectorContains reports whether direction d points into the polygon
// interior at vertex j. The boundary is counterclockwise: the
// interior lies left of both incident edges at a convex corner and
// left of either edge at a reflex one.
func sectorContains(poly []point2, j int, d point2) bool {
	n := len(poly)
	u, v, w := poly[(j+n-1)%n], poly[j], poly[(j+1)%n]
	e1 := point2{X: v.X - u.X, Y: v.Y - u.Y}
	e2 := point2{X: w.X - v.X, Y: w.Y - v.Y}
	c1 := e1.X*d.Y - e1.Y*d.X
	c2 := e2.X*d.Y - e2.Y*d.X
	if e1.X*e2.Y-e1.Y*e2.X > geomEps {
		return c1 > geomEps && c2 > geomEps
	}
	return c1 > geomEps || c2 > geomEps
}
