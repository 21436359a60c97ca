package pix3mf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDenseGrid(t *testing.T) {
	g, err := ReadDenseGrid(strings.NewReader(`[[0, 1, -1], [1, 1, 2]]`))
	require.NoError(t, err)

	assert.Equal(t, 3, g.Width())
	assert.Equal(t, 2, g.Height())
	assert.Equal(t, 3, g.NumColors())
	assert.Equal(t, Cell(0), g.At(0, 0))
	assert.Equal(t, Background, g.At(2, 0))
	assert.Equal(t, Cell(2), g.At(2, 1))
}

func TestReadDenseGridErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
	}{
		{"not json", `hello`},
		{"empty", `[]`},
		{"empty rows", `[[]]`},
		{"ragged", `[[0, 1], [0]]`},
		{"below background", `[[0, -2]]`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadDenseGrid(strings.NewReader(tc.input))
			assert.Error(t, err)
		})
	}
}

func TestDenseGridOutOfBounds(t *testing.T) {
	g := NewDenseGrid(2, 2, 1)
	g.Set(0, 0, 0)
	g.Set(-1, 5, 0) // ignored

	assert.Equal(t, Cell(0), g.At(0, 0))
	assert.Equal(t, Background, g.At(1, 1))
	assert.Equal(t, Background, g.At(-1, 0))
	assert.Equal(t, Background, g.At(0, 2))
}
