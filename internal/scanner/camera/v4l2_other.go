//go:build !linux

package camera

import (
	"context"
	"fmt"
)

// V4L2Provider is only functional on Linux. Elsewhere it reports no devices.
type V4L2Provider struct {
	Width, Height uint32
}

func NewV4L2Provider() *V4L2Provider {
	return &V4L2Provider{Width: 640, Height: 480}
}

func (p *V4L2Provider) Devices(ctx context.Context) ([]Device, error) {
	return nil, nil
}

func (p *V4L2Provider) Open(ctx context.Context, dev Device) (Handle, error) {
	return nil, fmt.Errorf("v4l2 capture is not supported on this platform")
}
