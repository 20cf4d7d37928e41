package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner shows activity on a terminal while a backend call runs. On
// anything that is not a terminal it prints nothing until the final
// Success or Fail line.
type Spinner struct {
	w        io.Writer
	message  string
	frames   []string
	interval time.Duration
	animate  bool

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 100 * time.Millisecond,
		animate:  isTerminal(w),
		done:     make(chan struct{}),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// Start begins the animation.
func (s *Spinner) Start() *Spinner {
	if !s.animate {
		return s
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
	return s
}

// stop ends the animation and clears the line. It returns false if the
// spinner was already stopped.
func (s *Spinner) stop() bool {
	stopped := false
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		if s.animate {
			fmt.Fprint(s.w, "\r\033[K")
		}
		stopped = true
	})
	return stopped
}

// Stop ends the animation without a message.
func (s *Spinner) Stop() {
	s.stop()
}

// Success stops the spinner with a success line.
func (s *Spinner) Success(message string) {
	if s.stop() {
		fmt.Fprintf(s.w, "✓ %s\n", message)
	}
}

// Fail stops the spinner with a failure line.
func (s *Spinner) Fail(message string) {
	if s.stop() {
		fmt.Fprintf(s.w, "✗ %s\n", message)
	}
}
