package camera

import (
	"context"
	"errors"
	"image"

	"github.com/gymone/gymadmin/internal/core/domain"
)

// Device describes one capture source.
type Device struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Frame is one sample from a device. Image-based sources fill Image;
// sources that decode on their own (barcode wedges) fill Payload instead.
type Frame struct {
	Image   image.Image
	Payload string
}

// Handle is an open device.
type Handle interface {
	// ReadFrame blocks until the next frame, ctx is done, or the source ends
	// (io.EOF).
	ReadFrame(ctx context.Context) (Frame, error)
	// SetTorch switches the device light. Returns domain.ErrTorchUnsupported
	// when the device has none.
	SetTorch(on bool) error
	Close() error
}

// Provider enumerates and opens devices.
type Provider interface {
	Devices(ctx context.Context) ([]Device, error)
	Open(ctx context.Context, dev Device) (Handle, error)
}

// ErrClosed is returned by a Handle used after Close.
var ErrClosed = errors.New("camera: handle closed")

// IndexOf returns the position of the device with the given ID, or -1.
func IndexOf(devices []Device, id string) int {
	for i, d := range devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// noTorch can be embedded by handles without a light.
type noTorch struct{}

func (noTorch) SetTorch(bool) error { return domain.ErrTorchUnsupported }
