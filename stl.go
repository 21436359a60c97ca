package pix3mf

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// WriteSTL flattens the model into a single grouped STL file for
// previewing or debugging. STL carries no materials, so the color
// layers are merged and their colors lost; use the 3MF container
// for actual multi-material printing.
func WriteSTL(path string, m *Model) error {
	var tris []*model3d.Triangle
	for _, layer := range m.Layers {
		mesh := layer.Mesh
		for _, t := range mesh.Triangles {
			v1, v2, v3 := mesh.Vertices[t[0]], mesh.Vertices[t[1]], mesh.Vertices[t[2]]
			tris = append(tris, &model3d.Triangle{
				model3d.XYZ(v1.X, v1.Y, v1.Z),
				model3d.XYZ(v2.X, v2.Y, v2.Z),
				model3d.XYZ(v3.X, v3.Y, v3.Z),
			})
		}
	}
	mesh := model3d.NewMeshTriangles(tris)
	return errors.Wrap(mesh.SaveGroupedSTL(path), "write stl")
}
