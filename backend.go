package pix3mf

import "github.com/pkg/errors"

// A Mesher converts one pixel region into solid geometry, appending
// it to the per-color mesh under construction. Implementations must
// not retain the region or the mesh between calls.
//
// Callers must not pass a region with zero cells.
type Mesher interface {
	AddRegion(m *Mesh, r *Region) error
}

// BackendKind selects one of the mask-to-mesh strategies.
type BackendKind int

const (
	// BackendBoxMerge tiles each region with greedily merged
	// rectangles and extrudes each rectangle to a box. Best for
	// blocky pixel art; minimal triangle counts on axis-aligned art.
	BackendBoxMerge BackendKind = iota

	// BackendContour traces each region's boundary into polygons,
	// triangulates them, and extrudes. Best for large uniform or
	// curved shapes.
	BackendContour

	// BackendMarchingCubes voxelizes each region and extracts an
	// isosurface. Produces far more triangles than the other two on
	// blocky input; only worthwhile when smooth surfaces are wanted.
	BackendMarchingCubes
)

func (k BackendKind) String() string {
	switch k {
	case BackendBoxMerge:
		return "box"
	case BackendContour:
		return "contour"
	case BackendMarchingCubes:
		return "marching"
	}
	return "unknown"
}

// ParseBackend converts a backend name ("box", "contour",
// "marching") to its BackendKind.
func ParseBackend(name string) (BackendKind, error) {
	switch name {
	case "box":
		return BackendBoxMerge, nil
	case "contour":
		return BackendContour, nil
	case "marching":
		return BackendMarchingCubes, nil
	}
	return 0, errors.Errorf("unknown backend %q", name)
}

// NewMesher creates the Mesher for the configured backend. All
// backends build geometry with the layer bottom at z=0; any layer
// offset is applied afterwards to that layer's vertices only.
func NewMesher(cfg *Config) (Mesher, error) {
	switch cfg.Backend {
	case BackendBoxMerge:
		return &BoxMesher{
			PixelSize: cfg.PixelSize,
			Thickness: cfg.Thickness,
			Chamfer:   cfg.Chamfer,
		}, nil
	case BackendContour:
		return &ContourMesher{
			PixelSize: cfg.PixelSize,
			Thickness: cfg.Thickness,
		}, nil
	case BackendMarchingCubes:
		return &MarchingMesher{
			PixelSize: cfg.PixelSize,
			Thickness: cfg.Thickness,
		}, nil
	}
	return nil, errors.Errorf("unknown backend kind %d", cfg.Backend)
}
