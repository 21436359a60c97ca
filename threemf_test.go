package pix3mf

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestModel(t *testing.T) *Model {
	t.Helper()
	model, err := Build(twoColorGrid(), Config{
		Backend:   BackendContour,
		Thickness: 2,
		Materials: []Material{
			{Name: "black", Color: RGB{0, 0, 0}},
			{Name: "red", Color: RGB{255, 0, 0}},
		},
	})
	require.NoError(t, err)
	return model
}

func readPart(t *testing.T, zr *zip.Reader, name string) []byte {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		r, err := f.Open()
		require.NoError(t, err)
		defer r.Close()
		body, err := io.ReadAll(r)
		require.NoError(t, err)
		return body
	}
	t.Fatalf("part %s missing from container", name)
	return nil
}

func TestWriteContainer(t *testing.T) {
	model := buildTestModel(t)

	var buf bytes.Buffer
	require.NoError(t, WriteContainer(&buf, model))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)

	types := string(readPart(t, zr, "[Content_Types].xml"))
	assert.Contains(t, types, "3dmanufacturing-3dmodel+xml")
	rels := string(readPart(t, zr, "_rels/.rels"))
	assert.Contains(t, rels, "/3D/3dmodel.model")

	raw := readPart(t, zr, "3D/3dmodel.model")
	var doc xmlModel
	require.NoError(t, xml.Unmarshal(raw, &doc))

	assert.Equal(t, "millimeter", doc.Unit)
	assert.Equal(t, coreNamespace, doc.Namespace)

	mats := doc.Resources.BaseMaterials
	assert.Equal(t, materialsResourceID, mats.ID)
	assert.Equal(t, "sRGB", mats.ColorSpace)
	require.Len(t, mats.Bases, 2)
	assert.Equal(t, "black", mats.Bases[0].Name)
	assert.Equal(t, "#000000", mats.Bases[0].DisplayColor)
	assert.Equal(t, "#FF0000", mats.Bases[1].DisplayColor)

	require.Len(t, doc.Resources.Objects, 2)
	for i, obj := range doc.Resources.Objects {
		assert.Equal(t, firstObjectID+i, obj.ID)
		assert.Equal(t, "model", obj.Type)
		assert.Equal(t, materialsResourceID, obj.PID)
		assert.Equal(t, i, obj.PIndex)
		assert.Len(t, obj.Mesh.Vertices, len(model.Layers[i].Mesh.Vertices))
		assert.Len(t, obj.Mesh.Triangles, len(model.Layers[i].Mesh.Triangles))
	}

	require.Len(t, doc.Build.Items, 2)
	assert.Equal(t, firstObjectID, doc.Build.Items[0].ObjectID)
	assert.Equal(t, firstObjectID+1, doc.Build.Items[1].ObjectID)

	// Vertices carry exactly three decimals; the 4x4 footprint on a
	// 250mm bed starts at x=123.
	assert.Contains(t, string(raw), `x="123.000"`)
}

func TestWriteContainerDoesNotMutate(t *testing.T) {
	model := buildTestModel(t)
	before := model.Layers[0].Mesh.Vertices[0]

	var buf bytes.Buffer
	require.NoError(t, WriteContainer(&buf, model))
	require.NoError(t, WriteContainer(&buf, model))

	assert.Equal(t, before, model.Layers[0].Mesh.Vertices[0])
}

func TestWriteContainerFile(t *testing.T) {
	model := buildTestModel(t)
	path := filepath.Join(t.TempDir(), "out.3mf")
	require.NoError(t, WriteContainerFile(path, model))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "PK"))
}
