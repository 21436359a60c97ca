package pix3mf

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// An RGB is a material display color with no alpha channel.
type RGB [3]uint8

// Hex renders the color as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2])
}

// ParseRGB parses a "#RRGGBB" or "RRGGBB" color string.
func ParseRGB(s string) (RGB, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return RGB{}, errors.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, errors.Wrapf(err, "invalid color %q", s)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// A Material binds a color layer to a filament.
type Material struct {
	// Name is the filament or material name. If empty, the 1-based
	// layer index is used.
	Name string

	Color RGB
}

// A ColorLayer is one color's mesh bound to its material and
// z-range. Layers are independent of one another.
type ColorLayer struct {
	Color    Cell
	Material Material
	BaseZ    float64
	TopZ     float64
	Mesh     *Mesh
}

// A Model is the finished set of color layers, translated onto the
// print bed and ready for serialization.
type Model struct {
	Layers []*ColorLayer

	// Offset is the bed-centering translation that has been applied
	// to every layer's vertices.
	Offset r3.Vec

	// PixelSize is the physical length of one grid unit in mm.
	PixelSize float64
}

// Config drives a pipeline run.
type Config struct {
	// PixelSize is the length of one grid unit in millimeters.
	PixelSize float64

	// Thickness is the height of each color layer in millimeters.
	Thickness float64

	Backend BackendKind

	// Chamfer enables the beveled-corner box variant. Only used by
	// the box-merge backend.
	Chamfer bool

	// Strict makes a failed closedness check abort the build instead
	// of logging it. The box-merge backend can legitimately leave
	// T-junction edges where rectangles of different widths meet, so
	// the check is advisory by default.
	Strict bool

	// Sandwich raises every layer except color 0 by one layer
	// thickness, so color 0 acts as a backing plate. The offset is
	// applied to the raised layers' vertices only; layers are never
	// stacked otherwise.
	Sandwich bool

	// BedWidth and BedDepth give the print bed size in millimeters.
	// The model's XY bounding box is centered on the bed. Both
	// default to 250.
	BedWidth float64
	BedDepth float64

	// Materials assigns a material per color index. Colors beyond
	// the slice get a neutral gray and a numeric name.
	Materials []Material
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.PixelSize == 0 {
		out.PixelSize = 1
	}
	if out.Thickness == 0 {
		out.Thickness = 2
	}
	if out.BedWidth == 0 {
		out.BedWidth = 250
	}
	if out.BedDepth == 0 {
		out.BedDepth = 250
	}
	return out
}

func (c *Config) material(color Cell) Material {
	m := Material{Color: RGB{128, 128, 128}}
	if int(color) < len(c.Materials) {
		m = c.Materials[color]
	}
	if m.Name == "" {
		m.Name = strconv.Itoa(int(color) + 1)
	}
	return m
}

// Build runs the whole pipeline: extract each color's regions, mesh
// them with the configured backend into one mesh per color, validate
// closedness, and center the result on the print bed.
//
// A color with no regions yields no layer, which is not an error.
// Every layer mesh is checked for closedness; a failure is logged,
// or aborts the build when cfg.Strict is set. The geometry is never
// patched up here, since that would only mask a backend bug.
func Build(g Grid, cfg Config) (*Model, error) {
	cfg = cfg.withDefaults()
	mesher, err := NewMesher(&cfg)
	if err != nil {
		return nil, err
	}

	model := &Model{PixelSize: cfg.PixelSize}
	for color := Cell(0); int(color) < g.NumColors(); color++ {
		regions := ExtractRegions(g, color)
		if len(regions) == 0 {
			logger().Debug("color has no regions, skipping", "color", int(color))
			continue
		}

		// The mesh owns this color's vertex-deduplication state;
		// nothing is shared across colors.
		mesh := NewMesh()
		for _, region := range regions {
			if err := mesher.AddRegion(mesh, region); err != nil {
				return nil, errors.Wrapf(err, "mesh color %d", int(color))
			}
		}
		if err := mesh.CheckClosed(); err != nil {
			var nm *NonManifoldError
			if errors.As(err, &nm) {
				nm.Color = int(color)
			}
			if cfg.Strict {
				return nil, err
			}
			logger().Warn("layer mesh is not watertight",
				"color", int(color), "err", err)
		}

		baseZ := 0.0
		if cfg.Sandwich && color != 0 {
			baseZ = cfg.Thickness
			mesh.Translate(r3.Vec{Z: baseZ})
		}
		layer := &ColorLayer{
			Color:    color,
			Material: cfg.material(color),
			BaseZ:    baseZ,
			TopZ:     baseZ + cfg.Thickness,
			Mesh:     mesh,
		}
		logger().Debug("built color layer",
			"color", int(color), "regions", len(regions),
			"vertices", len(mesh.Vertices), "triangles", len(mesh.Triangles),
			"volume", mesh.Volume())
		model.Layers = append(model.Layers, layer)
	}

	model.center(cfg.BedWidth, cfg.BedDepth)
	return model, nil
}

// center translates all layers so the model's XY bounding-box center
// lands on the bed center.
func (m *Model) center(bedWidth, bedDepth float64) {
	var min, max r3.Vec
	found := false
	for _, l := range m.Layers {
		lmin, lmax, ok := l.Mesh.Bounds()
		if !ok {
			continue
		}
		if !found {
			min, max, found = lmin, lmax, true
			continue
		}
		if lmin.X < min.X {
			min.X = lmin.X
		}
		if lmin.Y < min.Y {
			min.Y = lmin.Y
		}
		if lmax.X > max.X {
			max.X = lmax.X
		}
		if lmax.Y > max.Y {
			max.Y = lmax.Y
		}
	}
	if !found {
		return
	}
	m.Offset = r3.Vec{
		X: bedWidth/2 - (min.X+max.X)/2,
		Y: bedDepth/2 - (min.Y+max.Y)/2,
	}
	for _, l := range m.Layers {
		l.Mesh.Translate(m.Offset)
	}
}

// LayerStats summarizes one layer's geometry.
type LayerStats struct {
	Color     int
	Vertices  int
	Triangles int
	Volume    float64
}

// Stats returns per-layer geometry summaries in layer order.
func (m *Model) Stats() []LayerStats {
	out := make([]LayerStats, len(m.Layers))
	for i, l := range m.Layers {
		out[i] = LayerStats{
			Color:     int(l.Color),
			Vertices:  len(l.Mesh.Vertices),
			Triangles: len(l.Mesh.Triangles),
			Volume:    l.Mesh.Volume(),
		}
	}
	return out
}
