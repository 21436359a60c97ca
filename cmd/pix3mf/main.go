// Command pix3mf converts a classified pixel grid into a
// multi-material 3MF container.
//
// The grid is read from stdin as a JSON 2D array of integers, rows
// on the outer dimension: -1 marks background, any other value is a
// color index. Each color becomes one watertight mesh object bound
// to its own material.
package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/pix3mf"
)

func main() {
	var backendName string
	var pixelSize float64
	var thickness float64
	var chamfer bool
	var sandwich bool
	var strict bool
	var bedSize float64
	var colorList string
	var outputPath string
	var stlPath string
	var verbose bool
	flag.StringVar(&backendName, "backend", "box", "mesh strategy: box, contour, or marching")
	flag.Float64Var(&pixelSize, "pixel-size", 1, "length of one pixel in mm")
	flag.Float64Var(&thickness, "thickness", 2, "layer thickness in mm")
	flag.BoolVar(&chamfer, "chamfer", false, "bevel box corners (box backend only)")
	flag.BoolVar(&sandwich, "sandwich", false, "raise all colors above a color-0 backing layer")
	flag.BoolVar(&strict, "strict", false, "fail if a layer mesh is not watertight")
	flag.Float64Var(&bedSize, "bed", 250, "square print bed size in mm")
	flag.StringVar(&colorList, "colors", "", "comma-separated #RRGGBB material colors")
	flag.StringVar(&outputPath, "output", "output.3mf", "output 3MF file")
	flag.StringVar(&stlPath, "stl", "", "also write a grouped STL preview")
	flag.BoolVar(&verbose, "verbose", false, "log geometry details to stderr")
	flag.Parse()

	if verbose {
		pix3mf.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	backend, err := pix3mf.ParseBackend(backendName)
	essentials.Must(err)

	var materials []pix3mf.Material
	if colorList != "" {
		for _, part := range strings.Split(colorList, ",") {
			rgb, err := pix3mf.ParseRGB(strings.TrimSpace(part))
			essentials.Must(err)
			materials = append(materials, pix3mf.Material{Color: rgb})
		}
	}

	grid, err := pix3mf.ReadDenseGrid(os.Stdin)
	essentials.Must(err)

	model, err := pix3mf.Build(grid, pix3mf.Config{
		PixelSize: pixelSize,
		Thickness: thickness,
		Backend:   backend,
		Chamfer:   chamfer,
		Strict:    strict,
		Sandwich:  sandwich,
		BedWidth:  bedSize,
		BedDepth:  bedSize,
		Materials: materials,
	})
	essentials.Must(err)

	essentials.Must(pix3mf.WriteContainerFile(outputPath, model))
	if stlPath != "" {
		essentials.Must(pix3mf.WriteSTL(stlPath, model))
	}
}
