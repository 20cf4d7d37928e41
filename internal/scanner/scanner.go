package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/scanner/camera"
	"github.com/gymone/gymadmin/internal/scanner/decode"
	"github.com/gymone/gymadmin/internal/telemetry/logger"
	"github.com/gymone/gymadmin/internal/telemetry/metric"
)

// State is the scanner lifecycle state.
type State int

const (
	StateClosed State = iota
	StateInitializing
	StateNoCamera
	StateScanning
	StateResolving
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateInitializing:
		return "initializing"
	case StateNoCamera:
		return "no-camera"
	case StateScanning:
		return "scanning"
	case StateResolving:
		return "resolving"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is the outcome shown for one scanned payload.
type Result struct {
	Success bool   `json:"success" yaml:"success"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Snapshot is a point-in-time copy of the scanner's observable state.
type Snapshot struct {
	State        State           `json:"state" yaml:"state"`
	IsOpen       bool            `json:"is_open" yaml:"is_open"`
	HasCamera    bool            `json:"has_camera" yaml:"has_camera"`
	Cameras      []camera.Device `json:"cameras" yaml:"cameras"`
	ActiveCamera int             `json:"active_camera" yaml:"active_camera"`
	TorchOn      bool            `json:"torch_on" yaml:"torch_on"`
	Result       *Result         `json:"result,omitempty" yaml:"result,omitempty"`
	IsProcessing bool            `json:"is_processing" yaml:"is_processing"`
}

const (
	DefaultFPS          = 5
	DefaultSuccessDelay = 800 * time.Millisecond
	DefaultFailureDelay = 2000 * time.Millisecond
	DefaultRepeatHold   = 3 * time.Second
)

// Config tunes the engine. Zero fields take the defaults.
type Config struct {
	FPS          float64
	SuccessDelay time.Duration
	FailureDelay time.Duration
	RepeatHold   time.Duration
	// Device is the preferred device ID; the first device is used when it
	// is empty or not present.
	Device string
}

func (c Config) withDefaults() Config {
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.SuccessDelay <= 0 {
		c.SuccessDelay = DefaultSuccessDelay
	}
	if c.FailureDelay <= 0 {
		c.FailureDelay = DefaultFailureDelay
	}
	if c.RepeatHold < 0 {
		c.RepeatHold = 0
	} else if c.RepeatHold == 0 {
		c.RepeatHold = DefaultRepeatHold
	}
	return c
}

// Timer is the part of *time.Timer the scanner uses.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so tests can drive the result timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Options carries the scanner's collaborators.
type Options struct {
	Decoder decode.Decoder
	Logger  logger.Logger
	Metrics *metric.Registry
	Clock   Clock
	// OnResult receives each accepted member code once its success window
	// has elapsed. It runs on a timer goroutine. Close waits for it to
	// return, so it must not call Close itself; stop asynchronously instead.
	OnResult func(code string)
	// OnChange receives a snapshot after every state transition.
	OnChange func(Snapshot)
	// OnExhausted runs once a finite frame source reports io.EOF and no
	// result is pending. It runs on its own goroutine and may call Close.
	OnExhausted func()
}

// Scanner is the QR capture and validation engine.
type Scanner struct {
	provider camera.Provider
	cfg      Config
	decoder  decode.Decoder
	log      logger.Logger
	metrics  *metric.Registry
	clock    Clock
	onResult func(string)
	onChange func(Snapshot)
	onEnd    func()

	mu   sync.Mutex
	idle *sync.Cond

	state      State
	devices    []camera.Device
	active     int
	torch      bool
	result     *Result
	processing bool

	handle camera.Handle
	cancel context.CancelFunc
	done   chan struct{}
	timer  Timer

	// epoch changes on every Open and Close; gen on every result and Close.
	// Work that started under an older value is discarded.
	epoch   uint64
	gen     uint64
	pending int

	lastCode  string
	lastAt    time.Time
	exhausted bool
}

// New creates a closed scanner reading from provider.
func New(provider camera.Provider, cfg Config, opts Options) *Scanner {
	if opts.Decoder == nil {
		opts.Decoder = decode.NewQR()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	s := &Scanner{
		provider: provider,
		cfg:      cfg.withDefaults(),
		decoder:  opts.Decoder,
		log:      opts.Logger.With("component", "scanner"),
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		onResult: opts.OnResult,
		onChange: opts.OnChange,
		onEnd:    opts.OnExhausted,
		state:    StateClosed,
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Open enumerates devices once and starts scanning on the configured or
// first device. With no usable device the scanner stays in NoCamera until
// it is closed and opened again.
func (s *Scanner) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateClosed || s.pending > 0 {
		st := s.state
		s.mu.Unlock()
		return domain.ErrScannerState.WithDetails("open while " + st.String())
	}
	s.state = StateInitializing
	s.epoch++
	epoch := s.epoch
	s.pending++
	s.mu.Unlock()
	s.changed()

	defer s.finish()

	devices, err := s.provider.Devices(ctx)
	if err == nil && len(devices) == 0 {
		err = errors.New("no capture devices found")
	}
	if err != nil {
		return s.noCamera(epoch, devices, err)
	}

	idx := 0
	if s.cfg.Device != "" {
		if i := camera.IndexOf(devices, s.cfg.Device); i >= 0 {
			idx = i
		} else {
			s.log.Warn("configured camera not found, using first device", "device", s.cfg.Device)
		}
	}

	h, err := s.provider.Open(ctx, devices[idx])
	if err != nil {
		return s.noCamera(epoch, devices, err)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.release(h)
		return domain.ErrScannerState.WithDetails("closed while opening")
	}
	s.devices = devices
	s.active = idx
	s.handle = h
	s.startLocked(h, nil, nil)
	s.state = StateScanning
	s.mu.Unlock()

	s.log.Info("scanner open", "device", devices[idx].ID, "fps", s.cfg.FPS)
	s.changed()
	return nil
}

func (s *Scanner) noCamera(epoch uint64, devices []camera.Device, cause error) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return domain.ErrScannerState.WithDetails("closed while opening")
	}
	s.state = StateNoCamera
	s.devices = devices
	s.mu.Unlock()

	s.log.Warn("no usable camera", "error", cause)
	s.changed()
	return domain.ErrCameraUnavailable.WithCause(cause)
}

func (s *Scanner) finish() {
	s.mu.Lock()
	s.pending--
	s.idle.Broadcast()
	s.mu.Unlock()
}

// startLocked launches a decode loop for h. When switching cameras, prev is
// the old loop's done channel and retire its handle; the new loop waits for
// the old one to exit and then releases the old handle, so only one loop
// ever uses the decoder.
func (s *Scanner) startLocked(h camera.Handle, prev <-chan struct{}, retire camera.Handle) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go s.loop(ctx, h, done, prev, retire)
}

func (s *Scanner) loop(ctx context.Context, h camera.Handle, done chan<- struct{}, prev <-chan struct{}, retire camera.Handle) {
	defer close(done)

	if prev != nil {
		<-prev
		s.release(retire)
	}

	limiter := rate.NewLimiter(rate.Limit(s.cfg.FPS), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		frame, err := h.ReadFrame(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil, errors.Is(err, camera.ErrClosed):
				return
			case errors.Is(err, io.EOF):
				s.log.Info("frame source exhausted")
				s.mu.Lock()
				s.exhausted = true
				end := s.endLocked()
				s.mu.Unlock()
				end()
				return
			}
			s.log.Debug("read frame failed", "error", err)
			continue
		}

		payload := frame.Payload
		if payload == "" {
			payload, err = s.decoder.Decode(frame.Image)
			if err != nil {
				if !errors.Is(err, decode.ErrNoCode) {
					s.log.Debug("decode failed", "error", err)
				}
				continue
			}
		}
		if payload == "" {
			continue
		}

		s.metrics.IncFrameDecoded()
		s.HandlePayload(payload)
	}
}

// HandlePayload runs one decoded payload through validation. It reports
// whether the payload was accepted for processing; payloads arriving while
// the scanner is not idle in Scanning, or repeating a code dispatched within
// RepeatHold, are dropped.
func (s *Scanner) HandlePayload(payload string) bool {
	s.mu.Lock()
	if s.state != StateScanning || s.processing {
		s.mu.Unlock()
		s.metrics.IncScan("dropped")
		return false
	}

	s.processing = true
	s.state = StateResolving
	code := NormalizePayload(payload)

	if code == s.lastCode && s.clock.Now().Sub(s.lastAt) < s.cfg.RepeatHold {
		s.processing = false
		s.state = StateScanning
		s.mu.Unlock()
		s.log.Debug("repeat scan suppressed", "code", code)
		s.metrics.IncScan("dropped")
		return false
	}

	s.gen++
	gen := s.gen
	outcome := "failure"
	if domain.ValidMemberCode(code) {
		outcome = "success"
		s.state = StateSuccess
		s.result = &Result{
			Success: true,
			Code:    code,
			Message: fmt.Sprintf("Member code %s recognized", code),
		}
		s.timer = s.clock.AfterFunc(s.cfg.SuccessDelay, func() { s.dispatch(gen, code) })
	} else {
		s.state = StateFailure
		s.result = &Result{
			Success: false,
			Code:    payload,
			Message: fmt.Sprintf("Invalid member code: %s", payload),
		}
		s.timer = s.clock.AfterFunc(s.cfg.FailureDelay, func() { s.reset(gen) })
	}
	s.mu.Unlock()

	s.metrics.IncScan(outcome)
	s.changed()
	return true
}

// dispatch fires the result callback for an accepted code and then returns
// to Scanning. Further payloads stay blocked while the callback runs.
func (s *Scanner) dispatch(gen uint64, code string) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	cb := s.onResult
	s.pending++
	s.mu.Unlock()
	defer s.finish()

	if cb != nil {
		cb(code)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.lastCode = code
	s.lastAt = s.clock.Now()
	s.clearResultLocked()
	end := s.endLocked()
	s.mu.Unlock()
	s.changed()
	end()
}

func (s *Scanner) reset(gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.clearResultLocked()
	end := s.endLocked()
	s.mu.Unlock()
	s.changed()
	end()
}

// endLocked returns the OnExhausted notification if the source has ended
// and nothing is pending, or a no-op. It fires at most once per Open.
func (s *Scanner) endLocked() func() {
	if !s.exhausted || s.processing || s.state != StateScanning || s.onEnd == nil {
		return func() {}
	}
	s.exhausted = false
	fn := s.onEnd
	return func() { go fn() }
}

func (s *Scanner) clearResultLocked() {
	s.state = StateScanning
	s.result = nil
	s.processing = false
	s.timer = nil
}

// ToggleTorch flips the active camera's light. Only valid while Scanning;
// a device error is returned and leaves the torch state unchanged.
func (s *Scanner) ToggleTorch() error {
	s.mu.Lock()
	if s.state != StateScanning || s.handle == nil {
		st := s.state
		s.mu.Unlock()
		return domain.ErrScannerState.WithDetails("torch while " + st.String())
	}
	h := s.handle
	want := !s.torch
	s.mu.Unlock()

	if err := h.SetTorch(want); err != nil {
		s.log.Debug("torch toggle failed", "error", err)
		return err
	}

	s.mu.Lock()
	changed := s.handle == h
	if changed {
		s.torch = want
	}
	s.mu.Unlock()
	if changed {
		s.changed()
	}
	return nil
}

// NextCamera switches to the next enumerated device, wrapping around. The
// new device is opened before the old one is released, so a failed switch
// keeps scanning on the previous camera.
func (s *Scanner) NextCamera(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateScanning || s.pending > 0 {
		st := s.state
		s.mu.Unlock()
		return domain.ErrScannerState.WithDetails("switch camera while " + st.String())
	}
	if len(s.devices) < 2 {
		s.mu.Unlock()
		return nil
	}
	next := (s.active + 1) % len(s.devices)
	dev := s.devices[next]
	epoch := s.epoch
	s.pending++
	s.mu.Unlock()

	defer s.finish()

	h, err := s.provider.Open(ctx, dev)
	if err != nil {
		s.log.Warn("camera switch failed", "device", dev.ID, "error", err)
		return domain.ErrCameraUnavailable.WithCause(err)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.release(h)
		return domain.ErrScannerState.WithDetails("closed while switching camera")
	}
	old, oldDone := s.handle, s.done
	s.cancel()
	s.handle = h
	s.active = next
	s.torch = false
	s.startLocked(h, oldDone, old)
	s.mu.Unlock()

	s.log.Info("camera switched", "device", dev.ID)
	s.changed()
	return nil
}

// Close stops scanning from any state. It cancels pending result timers,
// waits for in-flight Open, NextCamera and OnResult calls and the decode
// loop, and releases the camera exactly once. A result still on screen is
// discarded without reaching OnResult, and no OnResult starts once Close
// has begun.
func (s *Scanner) Close() error {
	s.mu.Lock()
	wasOpen := s.state != StateClosed
	s.state = StateClosed
	s.epoch++
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for s.pending > 0 {
		s.idle.Wait()
	}

	h, cancel, done := s.handle, s.cancel, s.done
	s.handle, s.cancel, s.done = nil, nil, nil
	s.devices = nil
	s.active = 0
	s.torch = false
	s.result = nil
	s.processing = false
	s.exhausted = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	var err error
	if h != nil {
		if err = h.Close(); errors.Is(err, camera.ErrClosed) {
			err = nil
		}
	}
	if wasOpen {
		s.log.Info("scanner closed")
		s.changed()
	}
	return err
}

func (s *Scanner) release(h camera.Handle) {
	if h == nil {
		return
	}
	if err := h.Close(); err != nil && !errors.Is(err, camera.ErrClosed) {
		s.log.Debug("release camera failed", "error", err)
	}
}

// State returns the current state.
func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the observable state.
func (s *Scanner) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scanner) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        s.state,
		IsOpen:       s.state != StateClosed,
		HasCamera:    s.handle != nil,
		ActiveCamera: s.active,
		TorchOn:      s.torch,
		IsProcessing: s.processing,
	}
	if len(s.devices) > 0 {
		snap.Cameras = append([]camera.Device(nil), s.devices...)
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func (s *Scanner) changed() {
	snap := s.Snapshot()
	s.log.Debug("scanner state", "state", snap.State.String(), "processing", snap.IsProcessing)
	if s.onChange != nil {
		s.onChange(snap)
	}
}
