package pix3mf

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// A Cell classifies one pixel of the input image: either Background
// or a color index in [0, NumColors).
type Cell int

// Background marks a pixel that belongs to no color layer.
const Background Cell = -1

// A Grid is a classified pixel grid. It is the only contract the
// geometry engine has with the upstream quantizer: how pixels were
// assigned to colors is not this package's concern.
//
// At must return Background for out-of-bounds coordinates.
type Grid interface {
	Width() int
	Height() int
	NumColors() int
	At(x, y int) Cell
}

// A DenseGrid is a Grid backed by a flat row-major slice.
type DenseGrid struct {
	W      int
	H      int
	Colors int

	cells []Cell
}

// NewDenseGrid creates an all-background grid of the given size.
func NewDenseGrid(width, height, numColors int) *DenseGrid {
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = Background
	}
	return &DenseGrid{W: width, H: height, Colors: numColors, cells: cells}
}

// ReadDenseGrid reads a classified grid as a JSON 2D array of
// integers, rows on the outer dimension. Background pixels are
// encoded as -1; any other value is a color index. The number of
// colors is one more than the largest index present.
func ReadDenseGrid(r io.Reader) (*DenseGrid, error) {
	var rows [][]int
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rows); err != nil {
		return nil, errors.Wrap(err, "read grid")
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("read grid: empty grid")
	}
	width := len(rows[0])
	cells := make([]Cell, 0, len(rows)*width)
	numColors := 0
	for _, row := range rows {
		if len(row) != width {
			return nil, errors.New("read grid: ragged rows")
		}
		for _, v := range row {
			if v < -1 {
				return nil, errors.Errorf("read grid: invalid cell value %d", v)
			}
			if v+1 > numColors {
				numColors = v + 1
			}
			cells = append(cells, Cell(v))
		}
	}
	return &DenseGrid{W: width, H: len(rows), Colors: numColors, cells: cells}, nil
}

func (d *DenseGrid) Width() int     { return d.W }
func (d *DenseGrid) Height() int    { return d.H }
func (d *DenseGrid) NumColors() int { return d.Colors }

// At gets the classification at integer coordinates.
// If a coordinate is out of bounds, Background is returned.
func (d *DenseGrid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= d.W || y >= d.H {
		return Background
	}
	return d.cells[x+y*d.W]
}

// Set assigns the classification at integer coordinates.
// Out-of-bounds coordinates are ignored.
func (d *DenseGrid) Set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= d.W || y >= d.H {
		return
	}
	d.cells[x+y*d.W] = c
}
