package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Handler coordinates shutdown hooks.
type Handler struct {
	timeout time.Duration
	signals []os.Signal

	mu      sync.Mutex
	hooks   []func(context.Context) error
	trigger chan struct{}
	once    sync.Once
	done    chan struct{}
	reason  string
}

// NewHandler creates a handler whose hooks share timeout.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		trigger: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a hook. Hooks run in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Trigger starts shutdown without a signal. Extra calls are no-ops.
func (h *Handler) Trigger(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.trigger:
	default:
		h.reason = reason
		close(h.trigger)
	}
}

// Wait blocks until a signal, ctx cancellation or Trigger, then runs the
// hooks. Hook errors are joined. Only the first Wait runs hooks; later calls
// wait for it to finish.
func (h *Handler) Wait(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.setReason(sig.String())
	case <-ctx.Done():
		h.setReason(ctx.Err().Error())
	case <-h.trigger:
	case <-h.done:
		return nil
	}

	var err error
	h.once.Do(func() {
		err = h.run()
		close(h.done)
	})
	<-h.done
	return err
}

func (h *Handler) setReason(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reason == "" {
		h.reason = reason
	}
}

func (h *Handler) run() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]func(context.Context) error, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reason describes what started the shutdown, e.g. "interrupt".
func (h *Handler) Reason() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reason
}

// Done is closed once all hooks have run.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
