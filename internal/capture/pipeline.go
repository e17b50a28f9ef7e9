// Package capture drives the camera workflow: permission handling, device
// binding, live controls and the shutter itself.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Pipeline errors. All are recoverable at the state machine level: the user
// retries the triggering action.
var (
	ErrPermissionDenied  = errors.New("camera permission denied")
	ErrDeviceUnavailable = errors.New("no camera device available")
	ErrCaptureFailed     = errors.New("capture failed")
	ErrInvalidState      = errors.New("invalid pipeline state")
)

// State is the pipeline position. Transitions:
//
//	Uninitialized -> PermissionPending -> {PermissionDenied | Ready}
//	Ready -> Capturing -> {Captured | Ready (on failure)}
//	Captured -> {Ready (discard) | Ready (advance, photo handed off)}
type State int

const (
	Uninitialized State = iota
	PermissionPending
	PermissionDenied
	Ready
	Capturing
	Captured
)

// String implements fmt.Stringer for logging.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case PermissionPending:
		return "permission-pending"
	case PermissionDenied:
		return "permission-denied"
	case Ready:
		return "ready"
	case Capturing:
		return "capturing"
	case Captured:
		return "captured"
	default:
		return "unknown"
	}
}

// Facing selects the camera lens direction.
type Facing int

const (
	FacingBack Facing = iota
	FacingFront
)

// String implements fmt.Stringer for logging.
func (f Facing) String() string {
	if f == FacingFront {
		return "front"
	}
	return "back"
}

// FlashMode cycles off -> on -> auto -> off.
type FlashMode int

const (
	FlashOff FlashMode = iota
	FlashOn
	FlashAuto
)

// String implements fmt.Stringer for logging.
func (m FlashMode) String() string {
	switch m {
	case FlashOn:
		return "on"
	case FlashAuto:
		return "auto"
	default:
		return "off"
	}
}

// Photo is one captured image. It lives until the user discards it or
// advances to composition; it is never persisted by the pipeline.
type Photo struct {
	Path   string
	Width  int
	Height int
}

// Device is a bound camera.
type Device interface {
	Facing() Facing
	ZoomRange() (min, max float64)
	NeutralZoom() float64
	TakePhoto(ctx context.Context, flash FlashMode, zoom float64) (Photo, error)
}

// DeviceResolver binds a device for the requested facing, or reports
// ErrDeviceUnavailable.
type DeviceResolver interface {
	Resolve(facing Facing) (Device, error)
}

// PermissionGate models the asynchronous camera permission prompt.
type PermissionGate interface {
	Request(ctx context.Context) (bool, error)
}

// Pipeline is the capture state machine. Methods are safe for concurrent
// use; operations serialize on an internal lock, matching the cooperative
// single-flight model of the workflow.
type Pipeline struct {
	mu       sync.Mutex
	resolver DeviceResolver
	gate     PermissionGate

	state  State
	device Device
	facing Facing
	flash  FlashMode
	zoom   float64
	photo  *Photo
}

// NewPipeline returns a pipeline in the Uninitialized state.
func NewPipeline(resolver DeviceResolver, gate PermissionGate) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		gate:     gate,
		facing:   FacingBack,
	}
}

// State reports the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Facing reports the current lens direction.
func (p *Pipeline) Facing() Facing {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.facing
}

// Flash reports the current flash mode.
func (p *Pipeline) Flash() FlashMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flash
}

// Zoom reports the current zoom value.
func (p *Pipeline) Zoom() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.zoom
}

// Start requests camera permission and binds the device for the current
// facing. Valid from Uninitialized and PermissionDenied (retry).
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Uninitialized && p.state != PermissionDenied {
		return fmt.Errorf("%w: start from %s", ErrInvalidState, p.state)
	}

	p.state = PermissionPending

	granted, err := p.gate.Request(ctx)
	if err != nil || !granted {
		p.state = PermissionDenied
		if err != nil {
			log.Warn().Err(err).Msg("Permission request failed")
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return ErrPermissionDenied
	}

	if err := p.bind(p.facing); err != nil {
		p.state = Uninitialized
		return err
	}

	p.state = Ready
	log.Debug().Stringer("facing", p.facing).Msg("Camera ready")

	return nil
}

// Capture takes a photo. Failure returns the pipeline to Ready so the user
// can retry immediately.
func (p *Pipeline) Capture(ctx context.Context) (Photo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Ready {
		return Photo{}, fmt.Errorf("%w: capture from %s", ErrInvalidState, p.state)
	}

	p.state = Capturing

	photo, err := p.device.TakePhoto(ctx, p.flash, p.zoom)
	if err != nil {
		p.state = Ready
		log.Warn().Err(err).Msg("Capture failed, camera stays live")
		return Photo{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	p.photo = &photo
	p.state = Captured

	log.Debug().
		Str("path", photo.Path).
		Int("width", photo.Width).
		Int("height", photo.Height).
		Msg("Photo captured")

	return photo, nil
}

// ToggleFacing switches between the front and back device and resets zoom to
// the new device's neutral value. Ignored outside Ready; in particular the
// toggle is disallowed while a captured photo is being reviewed.
func (p *Pipeline) ToggleFacing() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Ready {
		log.Debug().Stringer("state", p.state).Msg("Facing toggle ignored outside ready state")
		return nil
	}

	next := FacingBack
	if p.facing == FacingBack {
		next = FacingFront
	}

	if err := p.bind(next); err != nil {
		return err
	}

	p.facing = next
	log.Debug().Stringer("facing", p.facing).Msg("Camera facing switched")

	return nil
}

// ToggleFlash cycles the flash mode. Ignored outside Ready.
func (p *Pipeline) ToggleFlash() FlashMode {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Ready {
		return p.flash
	}

	switch p.flash {
	case FlashOff:
		p.flash = FlashOn
	case FlashOn:
		p.flash = FlashAuto
	default:
		p.flash = FlashOff
	}

	return p.flash
}

// SetZoom applies a zoom gesture, clamped to the device-reported range, and
// returns the effective value. Ignored outside Ready.
func (p *Pipeline) SetZoom(zoom float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Ready {
		return p.zoom
	}

	min, max := p.device.ZoomRange()
	if zoom < min {
		zoom = min
	} else if zoom > max {
		zoom = max
	}
	p.zoom = zoom

	return p.zoom
}

// Discard drops the captured photo and returns to the live camera.
func (p *Pipeline) Discard() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Captured {
		return fmt.Errorf("%w: discard from %s", ErrInvalidState, p.state)
	}

	p.photo = nil
	p.state = Ready

	return nil
}

// Advance hands the captured photo to the composition stage and exits the
// pipeline's responsibility; the camera returns to Ready so a later retake
// resumes the live view.
func (p *Pipeline) Advance() (Photo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Captured || p.photo == nil {
		return Photo{}, fmt.Errorf("%w: advance from %s", ErrInvalidState, p.state)
	}

	photo := *p.photo
	p.photo = nil
	p.state = Ready

	return photo, nil
}

// bind resolves and attaches the device for the facing, resetting zoom to
// the device's neutral value. Must be called with the mutex held.
func (p *Pipeline) bind(facing Facing) error {
	device, err := p.resolver.Resolve(facing)
	if err != nil {
		log.Warn().Err(err).Stringer("facing", facing).Msg("No device for facing")
		return fmt.Errorf("%w: facing %s: %v", ErrDeviceUnavailable, facing, err)
	}

	p.device = device
	p.zoom = device.NeutralZoom()

	return nil
}
