package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestTriggerRunsHooksInReverse(t *testing.T) {
	h := NewHandler(time.Second)

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		h.OnShutdown(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}

	h.Trigger("stdin closed")
	h.Trigger("again")
	if err := h.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 3 || order[2] != 1 {
		t.Errorf("hook order = %v, want [3 2 1]", order)
	}
	if got := h.Reason(); got != "stdin closed" {
		t.Errorf("Reason() = %q, want first trigger reason", got)
	}
	select {
	case <-h.Done():
	default:
		t.Error("Done() not closed after Wait")
	}
}

func TestWaitJoinsHookErrors(t *testing.T) {
	h := NewHandler(time.Second)
	errA := errors.New("release camera")
	errB := errors.New("close metrics server")
	h.OnShutdown(func(ctx context.Context) error { return errA })
	h.OnShutdown(func(ctx context.Context) error { return nil })
	h.OnShutdown(func(ctx context.Context) error { return errB })

	h.Trigger("test")
	err := h.Wait(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Wait() error = %v, want both hook errors", err)
	}
}

func TestWaitContextCancel(t *testing.T) {
	h := NewHandler(time.Second)
	ran := make(chan struct{})
	h.OnShutdown(func(ctx context.Context) error {
		close(ran)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	select {
	case <-ran:
	default:
		t.Error("hook did not run on context cancellation")
	}
}

func TestWaitSignal(t *testing.T) {
	h := NewHandler(time.Second)
	h.signals = append(h.signals, syscall.SIGUSR1)
	ran := make(chan struct{})
	h.OnShutdown(func(ctx context.Context) error {
		close(ran)
		return nil
	})

	// Keep SIGUSR1 from killing the test binary before Wait subscribes.
	guard := make(chan os.Signal, 8)
	signal.Notify(guard, syscall.SIGUSR1)
	defer signal.Stop(guard)

	result := make(chan error, 1)
	go func() { result <- h.Wait(context.Background()) }()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for waiting := true; waiting; {
		select {
		case err := <-result:
			if err != nil {
				t.Errorf("Wait() error = %v", err)
			}
			waiting = false
		case <-tick.C:
			if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
				t.Fatalf("kill: %v", err)
			}
		case <-deadline:
			t.Fatal("Wait() did not return after signal")
		}
	}
	<-ran
}

func TestHookTimeout(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)
	h.OnShutdown(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	h.Trigger("test")
	if err := h.Wait(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}

func TestSecondWaitReturnsAfterFirst(t *testing.T) {
	h := NewHandler(time.Second)
	h.Trigger("test")
	if err := h.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := h.Wait(context.Background()); err != nil {
		t.Errorf("second Wait() error = %v", err)
	}
}
