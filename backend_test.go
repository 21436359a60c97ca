package pix3mf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	for _, kind := range []BackendKind{BackendBoxMerge, BackendContour, BackendMarchingCubes} {
		parsed, err := ParseBackend(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseBackend("nurbs")
	assert.Error(t, err)
	assert.Equal(t, "unknown", BackendKind(99).String())
}

func TestNewMesher(t *testing.T) {
	cfg := Config{PixelSize: 1, Thickness: 2}

	cfg.Backend = BackendBoxMerge
	m, err := NewMesher(&cfg)
	require.NoError(t, err)
	assert.IsType(t, &BoxMesher{}, m)

	cfg.Backend = BackendContour
	m, err = NewMesher(&cfg)
	require.NoError(t, err)
	assert.IsType(t, &ContourMesher{}, m)

	cfg.Backend = BackendMarchingCubes
	m, err = NewMesher(&cfg)
	require.NoError(t, err)
	assert.IsType(t, &MarchingMesher{}, m)

	cfg.Backend = BackendKind(99)
	_, err = NewMesher(&cfg)
	assert.Error(t, err)
}
