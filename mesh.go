package pix3mf

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// vertexPrecision is the quantization step, in millimeters, used
	// for vertex identity. Two points closer than this along every
	// axis resolve to the same vertex index.
	vertexPrecision = 1e-6

	// degenerateArea is the parallelogram-area threshold, in square
	// millimeters, below which a triangle is considered degenerate.
	degenerateArea = 1e-12
)

type vertexKey [3]int64

func keyForVertex(v r3.Vec) vertexKey {
	return vertexKey{
		int64(roundHalfAway(v.X / vertexPrecision)),
		int64(roundHalfAway(v.Y / vertexPrecision)),
		int64(roundHalfAway(v.Z / vertexPrecision)),
	}
}

func roundHalfAway(x float64) float64 {
	if x < 0 {
		return float64(int64(x - 0.5))
	}
	return float64(int64(x + 0.5))
}

// A Mesh accumulates the triangles of exactly one color layer.
//
// Vertex identity is by quantized coordinate, so geometrically
// coincident corners contributed by different rectangles, polygons,
// or cubes share one index. The deduplication state is scoped to the
// mesh; meshes for different colors must never share it, otherwise
// unrelated colors would fuse.
//
// When a triangle is added whose vertex set equals an existing
// triangle with opposite winding, the pair annihilates: that is how
// adjacent boxes fuse along shared faces into one closed surface.
type Mesh struct {
	Vertices  []r3.Vec
	Triangles [][3]int

	// EmittedVertices and EmittedTriangles count every accepted
	// emission before deduplication and face fusion. They exist so
	// generation laws (8 corners per box, 12 triangles per box) stay
	// observable after merging.
	EmittedVertices  int
	EmittedTriangles int

	lookup map[vertexKey]int
	byKey  map[[3]int]int
}

// NewMesh creates an empty mesh with fresh deduplication state.
func NewMesh() *Mesh {
	return &Mesh{
		lookup: map[vertexKey]int{},
		byKey:  map[[3]int]int{},
	}
}

// VertexIndex returns the index for the given point, reusing the
// index of any previously added point within quantization distance.
func (m *Mesh) VertexIndex(v r3.Vec) int {
	m.EmittedVertices++
	key := keyForVertex(v)
	if idx, ok := m.lookup[key]; ok {
		return idx
	}
	idx := len(m.Vertices)
	m.Vertices = append(m.Vertices, v)
	m.lookup[key] = idx
	return idx
}

// AddTriangle adds a triangle by vertex indices. Degenerate
// triangles (repeated vertices or near-zero area) are skipped and
// logged, not treated as errors. The return value reports whether
// the triangle was accepted.
func (m *Mesh) AddTriangle(v1, v2, v3 int) bool {
	if v1 == v2 || v2 == v3 || v1 == v3 {
		logger().Warn("skipping degenerate triangle", "v1", v1, "v2", v2, "v3", v3)
		return false
	}
	a, b, c := m.Vertices[v1], m.Vertices[v2], m.Vertices[v3]
	if r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) < degenerateArea {
		logger().Warn("skipping zero-area triangle", "v1", v1, "v2", v2, "v3", v3)
		return false
	}
	m.EmittedTriangles++

	canon := canonicalTriangle(v1, v2, v3)
	reversed := [3]int{canon[0], canon[2], canon[1]}
	if other, ok := m.byKey[reversed]; ok {
		// Coincident face with opposite winding: the two faces are
		// interior to the union of solids and cancel.
		m.removeTriangle(other)
		return true
	}
	m.byKey[canon] = len(m.Triangles)
	m.Triangles = append(m.Triangles, [3]int{v1, v2, v3})
	return true
}

// AddTriangleCoords adds a triangle by raw coordinates, resolving
// each corner through the deduplication map.
func (m *Mesh) AddTriangleCoords(a, b, c r3.Vec) bool {
	return m.AddTriangle(m.VertexIndex(a), m.VertexIndex(b), m.VertexIndex(c))
}

// AddQuad adds the quad (a, b, c, d) as two triangles. The split
// diagonal is anchored at the smallest vertex index so that a
// coincident quad added from the other side with reversed winding
// splits along the same diagonal and cancels cleanly.
func (m *Mesh) AddQuad(a, b, c, d int) {
	quad := [4]int{a, b, c, d}
	min := 0
	for i := 1; i < 4; i++ {
		if quad[i] < quad[min] {
			min = i
		}
	}
	q0, q1, q2, q3 := quad[min], quad[(min+1)%4], quad[(min+2)%4], quad[(min+3)%4]
	m.AddTriangle(q0, q1, q2)
	m.AddTriangle(q0, q2, q3)
}

// canonicalTriangle rotates the cyclic order so the smallest index
// comes first, preserving winding.
func canonicalTriangle(a, b, c int) [3]int {
	if a <= b && a <= c {
		return [3]int{a, b, c}
	} else if b <= a && b <= c {
		return [3]int{b, c, a}
	}
	return [3]int{c, a, b}
}

func (m *Mesh) removeTriangle(idx int) {
	t := m.Triangles[idx]
	delete(m.byKey, canonicalTriangle(t[0], t[1], t[2]))
	last := len(m.Triangles) - 1
	if idx != last {
		moved := m.Triangles[last]
		m.Triangles[idx] = moved
		m.byKey[canonicalTriangle(moved[0], moved[1], moved[2])] = idx
	}
	m.Triangles = m.Triangles[:last]
}

// CheckClosed verifies the closedness invariant: every undirected
// edge derived from the triangle list must be incident to exactly
// two triangles. A violation indicates a backend bug and is returned
// as a *NonManifoldError, never repaired.
func (m *Mesh) CheckClosed() error {
	counts := map[[2]int]int{}
	for _, t := range m.Triangles {
		for i := 0; i < 3; i++ {
			a, b := t[i], t[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			counts[[2]int{a, b}]++
		}
	}
	bad := 0
	for _, n := range counts {
		if n != 2 {
			bad++
		}
	}
	if bad > 0 {
		return &NonManifoldError{Color: -1, BadEdges: bad}
	}
	return nil
}

// Volume computes the enclosed volume of a closed mesh by the
// divergence theorem: one sixth of the sum over triangles of
// v1 . (v2 x v3). The result is meaningful only for meshes that
// pass CheckClosed; it is used to validate generated geometry
// against analytic expectations, not during construction.
func (m *Mesh) Volume() float64 {
	var total float64
	for _, t := range m.Triangles {
		v1, v2, v3 := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		total += r3.Dot(v1, r3.Cross(v2, v3))
	}
	if total < 0 {
		total = -total
	}
	return total / 6
}

// Translate shifts every vertex by the given offset and rebuilds the
// deduplication map for the new positions.
func (m *Mesh) Translate(offset r3.Vec) {
	m.lookup = make(map[vertexKey]int, len(m.Vertices))
	for i, v := range m.Vertices {
		m.Vertices[i] = r3.Add(v, offset)
		m.lookup[keyForVertex(m.Vertices[i])] = i
	}
}

// Bounds returns the axis-aligned bounding box of the mesh. The
// second return value is false for a mesh with no vertices.
func (m *Mesh) Bounds() (min, max r3.Vec, ok bool) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}, false
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	return min, max, true
}
