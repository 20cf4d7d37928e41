//go:build linux

package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/blackjack/webcam"

	"github.com/gymone/gymadmin/internal/core/domain"
)

const (
	fourccMJPEG webcam.PixelFormat = 'M' | 'J'<<8 | 'P'<<16 | 'G'<<24
	fourccYUYV  webcam.PixelFormat = 'Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24

	// V4L2_CID_FLASH_LED_MODE and its torch value.
	ctrlFlashLEDMode webcam.ControlID = 0x009c0901
	flashModeNone    int32            = 0
	flashModeTorch   int32            = 2

	frameWaitSeconds = 1
)

// V4L2Provider captures from /dev/video* devices.
type V4L2Provider struct {
	// Width and Height are the requested capture size; the driver may pick
	// the closest size it supports.
	Width, Height uint32

	devGlob string
	sysfs   string
}

// NewV4L2Provider creates a provider requesting 640x480 frames.
func NewV4L2Provider() *V4L2Provider {
	return &V4L2Provider{
		Width:   640,
		Height:  480,
		devGlob: "/dev/video*",
		sysfs:   "/sys/class/video4linux",
	}
}

// Devices lists video nodes. Metadata-only nodes are listed too; opening
// one fails with no usable pixel format.
func (p *V4L2Provider) Devices(ctx context.Context) ([]Device, error) {
	paths, err := filepath.Glob(p.devGlob)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	devices := make([]Device, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if raw, err := os.ReadFile(filepath.Join(p.sysfs, name, "name")); err == nil {
			name = strings.TrimSpace(string(raw))
		}
		devices = append(devices, Device{ID: path, Name: name})
	}
	return devices, nil
}

// Open starts streaming from dev, preferring MJPEG and falling back to YUYV.
func (p *V4L2Provider) Open(ctx context.Context, dev Device) (Handle, error) {
	cam, err := webcam.Open(dev.ID)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dev.ID, err)
	}

	formats := cam.GetSupportedFormats()
	format := fourccMJPEG
	if _, ok := formats[format]; !ok {
		format = fourccYUYV
		if _, ok := formats[format]; !ok {
			cam.Close()
			return nil, fmt.Errorf("%s: no MJPEG or YUYV support", dev.ID)
		}
	}

	got, w, h, err := cam.SetImageFormat(format, p.Width, p.Height)
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("%s: set format: %w", dev.ID, err)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, fmt.Errorf("%s: start streaming: %w", dev.ID, err)
	}

	_, torch := cam.GetControls()[ctrlFlashLEDMode]
	return &v4l2Handle{
		cam:    cam,
		format: got,
		width:  int(w),
		height: int(h),
		torch:  torch,
	}, nil
}

type v4l2Handle struct {
	cam    *webcam.Webcam
	format webcam.PixelFormat
	width  int
	height int
	torch  bool

	mu     sync.Mutex
	closed bool
}

func (h *v4l2Handle) ReadFrame(ctx context.Context) (Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}
		if h.isClosed() {
			return Frame{}, ErrClosed
		}

		err := h.cam.WaitForFrame(frameWaitSeconds)
		var timeout *webcam.Timeout
		if errors.As(err, &timeout) {
			continue
		}
		if err != nil {
			return Frame{}, err
		}

		raw, err := h.cam.ReadFrame()
		if err != nil {
			return Frame{}, err
		}
		if len(raw) == 0 {
			continue
		}
		img, err := h.decode(raw)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Image: img}, nil
	}
}

func (h *v4l2Handle) decode(raw []byte) (image.Image, error) {
	if h.format == fourccMJPEG {
		return jpeg.Decode(bytes.NewReader(raw))
	}
	// YUYV packs Y0 U Y1 V; the luma plane alone is enough for QR codes.
	gray := image.NewGray(image.Rect(0, 0, h.width, h.height))
	n := h.width * h.height
	if len(raw) < n*2 {
		return nil, fmt.Errorf("short YUYV frame: %d bytes", len(raw))
	}
	for i := 0; i < n; i++ {
		gray.Pix[i] = raw[i*2]
	}
	return gray, nil
}

func (h *v4l2Handle) SetTorch(on bool) error {
	if !h.torch {
		return domain.ErrTorchUnsupported
	}
	mode := flashModeNone
	if on {
		mode = flashModeTorch
	}
	return h.cam.SetControl(ctrlFlashLEDMode, mode)
}

func (h *v4l2Handle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *v4l2Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.closed = true
	_ = h.cam.StopStreaming()
	return h.cam.Close()
}
