package connection

import (
	"context"
	"sync"
	"time"

	"github.com/gymone/gymadmin/internal/telemetry/logger"
	"github.com/gymone/gymadmin/internal/telemetry/metric"
)

// Redirector sends the user to the login entry point.
type Redirector func(reason string)

// Guard tears the session down after the backend rejects the credential.
//
// ForceLogout acts once: the first call clears the session, notifies
// subscribers and redirects; every later call is a no-op until Arm is called
// after a successful login or validation.
type Guard struct {
	mu       sync.Mutex
	fired    bool
	clear    func(context.Context) error
	redirect Redirector
	subs     map[int]func(reason string)
	nextSub  int

	logger  logger.Logger
	metrics *metric.Registry
}

// NewGuard creates an armed guard. clear removes the session, both in
// memory and on disk.
func NewGuard(clear func(context.Context) error, log logger.Logger, metrics *metric.Registry) *Guard {
	if log == nil {
		log = logger.Default()
	}
	return &Guard{
		clear:   clear,
		subs:    make(map[int]func(string)),
		logger:  log,
		metrics: metrics,
	}
}

// SetRedirector sets the login redirect. The CLI prints a hint; the shell
// switches its prompt.
func (g *Guard) SetRedirector(r Redirector) {
	g.mu.Lock()
	g.redirect = r
	g.mu.Unlock()
}

// Subscribe registers fn for logout broadcasts and returns its cancel func.
func (g *Guard) Subscribe(fn func(reason string)) func() {
	g.mu.Lock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.subs, id)
		g.mu.Unlock()
	}
}

// ForceLogout runs the logout once. It reports whether this call did it.
func (g *Guard) ForceLogout(reason string) bool {
	g.mu.Lock()
	if g.fired {
		g.mu.Unlock()
		return false
	}
	g.fired = true
	subs := make([]func(string), 0, len(g.subs))
	for _, fn := range g.subs {
		subs = append(subs, fn)
	}
	redirect := g.redirect
	g.mu.Unlock()

	g.logger.Warn("session rejected by server, logging out", "reason", reason)
	g.metrics.IncForcedLogout()

	// The failing request's context may already be done.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if g.clear != nil {
		if err := g.clear(ctx); err != nil {
			g.logger.Error("failed to clear session", "error", err)
		}
	}

	for _, fn := range subs {
		fn(reason)
	}
	if redirect != nil {
		redirect(reason)
	}
	return true
}

// Arm re-enables ForceLogout after a new session was established.
func (g *Guard) Arm() {
	g.mu.Lock()
	g.fired = false
	g.mu.Unlock()
}

// Fired reports whether a forced logout happened since the last Arm.
func (g *Guard) Fired() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fired
}
