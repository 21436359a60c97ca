package pix3mf

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// The three required parts of the container and the 3MF core
// namespace. id 1 is reserved for the material table, so mesh
// objects start at id 2.
const (
	contentTypesPart = "[Content_Types].xml"
	relsPart         = "_rels/.rels"
	modelPart        = "3D/3dmodel.model"

	coreNamespace = "http://schemas.microsoft.com/3dmanufacturing/core/2015/02"

	materialsResourceID = 1
	firstObjectID       = 2
)

const contentTypesXML = xml.Header +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="model" ContentType="application/vnd.ms-package.3dmanufacturing-3dmodel+xml"/>` +
	`</Types>`

const relsXML = xml.Header +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Target="/3D/3dmodel.model" Id="rel0" ` +
	`Type="http://schemas.microsoft.com/3dmanufacturing/2013/01/3dmodel"/>` +
	`</Relationships>`

type xmlBase struct {
	Name         string `xml:"name,attr"`
	DisplayColor string `xml:"displaycolor,attr"`
}

type xmlBaseMaterials struct {
	ID int `xml:"id,attr"`

	// ColorSpace must be "sRGB" for the target slicer to recognize
	// the display colors.
	ColorSpace string    `xml:"colorspace,attr"`
	Bases      []xmlBase `xml:"base"`
}

type xmlVertex struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
	Z string `xml:"z,attr"`
}

type xmlTriangle struct {
	V1 int `xml:"v1,attr"`
	V2 int `xml:"v2,attr"`
	V3 int `xml:"v3,attr"`
}

type xmlMesh struct {
	Vertices  []xmlVertex   `xml:"vertices>vertex"`
	Triangles []xmlTriangle `xml:"triangles>triangle"`
}

type xmlObject struct {
	ID     int     `xml:"id,attr"`
	Type   string  `xml:"type,attr"`
	PID    int     `xml:"pid,attr"`
	PIndex int     `xml:"pindex,attr"`
	Mesh   xmlMesh `xml:"mesh"`
}

type xmlResources struct {
	BaseMaterials xmlBaseMaterials `xml:"basematerials"`
	Objects       []xmlObject      `xml:"object"`
}

type xmlItem struct {
	ObjectID int `xml:"objectid,attr"`
}

type xmlBuild struct {
	Items []xmlItem `xml:"item"`
}

type xmlModel struct {
	XMLName   xml.Name     `xml:"model"`
	Unit      string       `xml:"unit,attr"`
	Namespace string       `xml:"xmlns,attr"`
	Resources xmlResources `xml:"resources"`
	Build     xmlBuild     `xml:"build"`
}

// WriteContainer serializes the model as a 3MF archive. It performs
// no geometry work and never mutates the meshes; it is a pure
// translation of the in-memory model into archive parts. I/O errors
// are propagated to the caller wrapped with the failing part.
func WriteContainer(w io.Writer, m *Model) error {
	zw := zip.NewWriter(w)

	for _, part := range []struct {
		name, body string
	}{
		{contentTypesPart, contentTypesXML},
		{relsPart, relsXML},
	} {
		pw, err := zw.Create(part.name)
		if err != nil {
			return errors.Wrapf(err, "write %s", part.name)
		}
		if _, err := io.WriteString(pw, part.body); err != nil {
			return errors.Wrapf(err, "write %s", part.name)
		}
	}

	pw, err := zw.Create(modelPart)
	if err != nil {
		return errors.Wrapf(err, "write %s", modelPart)
	}
	if _, err := io.WriteString(pw, xml.Header); err != nil {
		return errors.Wrapf(err, "write %s", modelPart)
	}
	enc := xml.NewEncoder(pw)
	if err := enc.Encode(buildModelXML(m)); err != nil {
		return errors.Wrapf(err, "write %s", modelPart)
	}

	return errors.Wrap(zw.Close(), "close container")
}

// WriteContainerFile writes the 3MF archive to a file.
func WriteContainerFile(path string, m *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "write container")
	}
	if err := WriteContainer(f, m); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "write container")
}

func buildModelXML(m *Model) *xmlModel {
	doc := &xmlModel{
		Unit:      "millimeter",
		Namespace: coreNamespace,
		Resources: xmlResources{
			BaseMaterials: xmlBaseMaterials{
				ID:         materialsResourceID,
				ColorSpace: "sRGB",
			},
		},
	}
	for i, layer := range m.Layers {
		doc.Resources.BaseMaterials.Bases = append(doc.Resources.BaseMaterials.Bases, xmlBase{
			Name:         layer.Material.Name,
			DisplayColor: layer.Material.Color.Hex(),
		})

		obj := xmlObject{
			ID:     firstObjectID + i,
			Type:   "model",
			PID:    materialsResourceID,
			PIndex: int(layer.Color),
		}
		mesh := layer.Mesh
		obj.Mesh.Vertices = make([]xmlVertex, len(mesh.Vertices))
		for j, v := range mesh.Vertices {
			// Three decimal places (1 micron) is sufficient.
			obj.Mesh.Vertices[j] = xmlVertex{
				X: fmt.Sprintf("%.3f", v.X),
				Y: fmt.Sprintf("%.3f", v.Y),
				Z: fmt.Sprintf("%.3f", v.Z),
			}
		}
		obj.Mesh.Triangles = make([]xmlTriangle, len(mesh.Triangles))
		for j, t := range mesh.Triangles {
			// Color binds per object via pid/pindex, never per
			// triangle.
			obj.Mesh.Triangles[j] = xmlTriangle{V1: t[0], V2: t[1], V3: t[2]}
		}
		doc.Resources.Objects = append(doc.Resources.Objects, obj)
		doc.Build.Items = append(doc.Build.Items, xmlItem{ObjectID: obj.ID})
	}
	return doc
}
