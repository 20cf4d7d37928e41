package camera

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineProvider turns a line-oriented reader into a device. Handheld
// scanners in keyboard mode type the decoded payload followed by Enter, so
// each line becomes a Frame with Payload set.
//
// The reader is consumed by a single goroutine for the lifetime of the
// provider, so it can be opened, closed and opened again without losing
// buffered input.
type LineProvider struct {
	name string
	r    io.Reader

	once  sync.Once
	lines chan string
	done  chan struct{}
	err   error
}

// NewLineProvider creates a provider reading from r.
func NewLineProvider(name string, r io.Reader) *LineProvider {
	return &LineProvider{
		name:  name,
		r:     r,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

func (p *LineProvider) Devices(ctx context.Context) ([]Device, error) {
	return []Device{{ID: "line:" + p.name, Name: p.name}}, nil
}

func (p *LineProvider) Open(ctx context.Context, dev Device) (Handle, error) {
	p.once.Do(func() { go p.pump() })
	return &lineHandle{p: p, closed: make(chan struct{})}, nil
}

func (p *LineProvider) pump() {
	defer close(p.done)
	sc := bufio.NewScanner(p.r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		p.lines <- line
	}
	p.err = sc.Err()
}

type lineHandle struct {
	noTorch

	p         *LineProvider
	closeOnce sync.Once
	closed    chan struct{}
}

func (h *lineHandle) ReadFrame(ctx context.Context) (Frame, error) {
	select {
	case <-h.closed:
		return Frame{}, ErrClosed
	default:
	}

	select {
	case line := <-h.p.lines:
		return Frame{Payload: line}, nil
	case <-h.p.done:
		if h.p.err != nil {
			return Frame{}, h.p.err
		}
		return Frame{}, io.EOF
	case <-h.closed:
		return Frame{}, ErrClosed
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

func (h *lineHandle) Close() error {
	err := ErrClosed
	h.closeOnce.Do(func() {
		close(h.closed)
		err = nil
	})
	return err
}
