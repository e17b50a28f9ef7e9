package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FileDevice is a camera device backed by an image file on disk. The CLI has
// no hardware camera; "taking a photo" reads the staged file.
type FileDevice struct {
	facing  Facing
	path    string
	minZoom float64
	maxZoom float64
}

// NewFileDevice builds a device reading from path.
func NewFileDevice(facing Facing, path string) *FileDevice {
	return &FileDevice{facing: facing, path: path, minZoom: 1, maxZoom: 10}
}

// Facing reports the simulated lens direction.
func (d *FileDevice) Facing() Facing { return d.facing }

// ZoomRange reports the simulated zoom limits.
func (d *FileDevice) ZoomRange() (min, max float64) { return d.minZoom, d.maxZoom }

// NeutralZoom is the value the pipeline resets to on device changes.
func (d *FileDevice) NeutralZoom() float64 { return d.minZoom }

// TakePhoto validates the staged file decodes as an image and returns its
// dimensions. Flash and zoom are accepted for interface compatibility.
func (d *FileDevice) TakePhoto(_ context.Context, _ FlashMode, _ float64) (Photo, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return Photo{}, err
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Photo{}, fmt.Errorf("decode %s: %w", d.path, err)
	}

	return Photo{Path: d.path, Width: cfg.Width, Height: cfg.Height}, nil
}

// StaticResolver serves preset devices per facing.
type StaticResolver struct {
	Devices map[Facing]Device
}

// Resolve returns the device for the facing, or an error when none exists.
func (r StaticResolver) Resolve(facing Facing) (Device, error) {
	if d, ok := r.Devices[facing]; ok && d != nil {
		return d, nil
	}

	return nil, errors.New("no device registered")
}

// GrantedGate is a permission gate with a fixed answer, used by the CLI
// (always granted) and by tests.
type GrantedGate struct {
	Granted bool
}

// Request reports the preset decision.
func (g GrantedGate) Request(_ context.Context) (bool, error) {
	return g.Granted, nil
}
