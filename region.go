package pix3mf

import "image"

// A Region is a maximal 4-connected set of grid cells sharing one
// color index. Cells are listed in discovery order, which is
// deterministic for a given grid.
type Region struct {
	Color Cell
	Cells []image.Point
}

// Bounds returns the smallest rectangle containing all cells of the
// region, in half-open grid coordinates.
func (r *Region) Bounds() image.Rectangle {
	b := image.Rectangle{Min: r.Cells[0], Max: r.Cells[0].Add(image.Pt(1, 1))}
	for _, c := range r.Cells[1:] {
		if c.X < b.Min.X {
			b.Min.X = c.X
		}
		if c.Y < b.Min.Y {
			b.Min.Y = c.Y
		}
		if c.X+1 > b.Max.X {
			b.Max.X = c.X + 1
		}
		if c.Y+1 > b.Max.Y {
			b.Max.Y = c.Y + 1
		}
	}
	return b
}

var neighbors4 = [4]image.Point{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}

// ExtractRegions finds every maximal 4-connected region of the given
// color. A color with no cells yields an empty list, which is not an
// error: downstream stages simply produce no object for it.
//
// Seeds are scanned in row-major order and each region is flooded
// breadth-first, so the returned regions and their cell order are
// deterministic.
func ExtractRegions(g Grid, color Cell) []*Region {
	width, height := g.Width(), g.Height()
	visited := make([]bool, width*height)

	var regions []*Region
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[x+y*width] || g.At(x, y) != color {
				continue
			}
			region := &Region{Color: color}
			queue := []image.Point{{X: x, Y: y}}
			visited[x+y*width] = true
			for len(queue) > 0 {
				cell := queue[0]
				queue = queue[1:]
				region.Cells = append(region.Cells, cell)
				for _, d := range neighbors4 {
					n := cell.Add(d)
					if n.X < 0 || n.Y < 0 || n.X >= width || n.Y >= height {
						continue
					}
					if visited[n.X+n.Y*width] || g.At(n.X, n.Y) != color {
						continue
					}
					visited[n.X+n.Y*width] = true
					queue = append(queue, n)
				}
			}
			regions = append(regions, region)
		}
	}
	return regions
}
