package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ImageDirProvider replays the images in a directory as frames, in name
// order. It exposes a single device named after the directory.
type ImageDirProvider struct {
	Dir string
	// Loop restarts from the first image instead of reporting io.EOF.
	Loop bool
}

// NewImageDirProvider creates a provider for dir.
func NewImageDirProvider(dir string, loop bool) *ImageDirProvider {
	return &ImageDirProvider{Dir: dir, Loop: loop}
}

// Devices reports the directory as one device, or none if it has no images.
func (p *ImageDirProvider) Devices(ctx context.Context) ([]Device, error) {
	files, err := p.files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return []Device{{ID: "dir:" + p.Dir, Name: filepath.Base(p.Dir)}}, nil
}

// Open snapshots the file list; images added later are not picked up.
func (p *ImageDirProvider) Open(ctx context.Context, dev Device) (Handle, error) {
	files, err := p.files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images in %s", p.Dir)
	}
	return &imageDirHandle{files: files, loop: p.Loop}, nil
}

func (p *ImageDirProvider) files() ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(p.Dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

type imageDirHandle struct {
	noTorch

	mu     sync.Mutex
	files  []string
	next   int
	loop   bool
	closed bool
}

func (h *imageDirHandle) ReadFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return Frame{}, ErrClosed
	}
	if h.next >= len(h.files) {
		if !h.loop {
			h.mu.Unlock()
			return Frame{}, io.EOF
		}
		h.next = 0
	}
	path := h.files[h.next]
	h.next++
	h.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return Frame{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Frame{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return Frame{Image: img}, nil
}

func (h *imageDirHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.closed = true
	return nil
}
