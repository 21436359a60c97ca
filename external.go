package pix3mf

import (
	"bytes"
	"os/exec"

	"github.com/pkg/errors"
)

// A HeightmapTool is an external solid-modeling program that accepts
// a grayscale heightmap image and returns a single-object mesh
// container. It is an alternate rendering path outside the geometry
// engine; this package only defines the collaboration contract and
// the availability probe.
type HeightmapTool interface {
	// Available reports whether the tool can be invoked. A missing
	// tool yields an *ExternalToolError so callers can fail fast
	// with an actionable message instead of dying mid-pipeline.
	Available() error

	// Render feeds the tool a heightmap image and returns the mesh
	// container bytes it produces.
	Render(heightmap []byte) ([]byte, error)
}

// A CommandTool runs a HeightmapTool as a subprocess, writing the
// heightmap to its stdin and reading the container from its stdout.
type CommandTool struct {
	// Command is the executable name or path.
	Command string

	// Args are passed before the input.
	Args []string
}

func (c *CommandTool) Available() error {
	if _, err := exec.LookPath(c.Command); err != nil {
		return &ExternalToolError{Tool: c.Command, Err: err}
	}
	return nil
}

func (c *CommandTool) Render(heightmap []byte) ([]byte, error) {
	if err := c.Available(); err != nil {
		return nil, err
	}
	cmd := exec.Command(c.Command, c.Args...)
	cmd.Stdin = bytes.NewReader(heightmap)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "run %s", c.Command)
	}
	return out.Bytes(), nil
}
