package pix3mf

import "fmt"

// A NonManifoldError reports that a generated mesh is not closed:
// at least one undirected edge is not shared by exactly two
// triangles. It indicates a bug in the geometry backend that
// produced the mesh and is never repaired automatically.
type NonManifoldError struct {
	// Color is the color index of the offending mesh, or -1 if the
	// mesh was checked outside of a pipeline build.
	Color int

	// BadEdges is the number of undirected edges whose triangle
	// incidence count is not exactly two.
	BadEdges int
}

func (n *NonManifoldError) Error() string {
	if n.Color < 0 {
		return fmt.Sprintf("mesh is not manifold: %d bad edges", n.BadEdges)
	}
	return fmt.Sprintf("mesh for color %d is not manifold: %d bad edges", n.Color, n.BadEdges)
}

// An ExternalToolError reports that an external solid-modeling tool
// could not be located or executed.
type ExternalToolError struct {
	Tool string
	Err  error
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("external tool %q: %s", e.Tool, e.Err)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}
