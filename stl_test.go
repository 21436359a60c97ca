package pix3mf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSTL(t *testing.T) {
	model := buildTestModel(t)
	path := filepath.Join(t.TempDir(), "preview.stl")
	require.NoError(t, WriteSTL(path, model))

	total := 0
	for _, l := range model.Layers {
		total += len(l.Mesh.Triangles)
	}

	// Binary STL: 80-byte header, uint32 count, 50 bytes per
	// triangle.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(84+50*total), info.Size())
}
