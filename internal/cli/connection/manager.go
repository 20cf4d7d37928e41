package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/telemetry/logger"
	"github.com/gymone/gymadmin/internal/telemetry/metric"
)

// Backend endpoints of the session lifecycle.
const (
	PathLogin    = "/auth/login/gym-one"
	PathValidate = "/auth/validate"
	PathLogout   = "/auth/logout"
)

// SessionPersister stores the session between runs.
type SessionPersister interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Clear(ctx context.Context) error
}

// Manager owns the process-wide session. Stores only read the token
// through it; only the manager and its guard change it.
type Manager struct {
	mu      sync.RWMutex
	session *domain.Session
	store   SessionPersister
	guard   *Guard
	logger  logger.Logger
}

// NewManager creates a manager with no session loaded yet.
func NewManager(store SessionPersister, log logger.Logger, metrics *metric.Registry) *Manager {
	if log == nil {
		log = logger.Default()
	}
	m := &Manager{store: store, logger: log}
	m.guard = NewGuard(m.clear, log, metrics)
	return m
}

// Guard returns the manager's forced-logout guard.
func (m *Manager) Guard() *Guard {
	return m.guard
}

// Token returns the current bearer token, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

// Session returns a copy of the current session. It is never nil.
func (m *Manager) Session() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return &domain.Session{}
	}
	return m.session.Clone()
}

// IsAuthenticated reports whether a session with a token is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil && m.session.IsAuthenticated && m.session.Token != ""
}

// validateResponse is the payload of GET /auth/validate.
type validateResponse struct {
	Valid *bool             `json:"valid"`
	User  *domain.Principal `json:"user"`
}

// Init loads the persisted session and confirms it with the backend.
//
// A rejected token goes through the guard. A network failure keeps the
// persisted session so the next command can try again, and is returned.
func (m *Manager) Init(ctx context.Context, c *HTTPClient) error {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.Token == "" {
		m.set(nil)
		return nil
	}
	m.set(sess)

	var resp validateResponse
	err = c.Get(ctx, PathValidate, &resp)
	var apiErr *APIError
	switch {
	case err == nil:
	case IsSessionExpired(err):
		return nil
	case errors.Is(err, domain.ErrNetwork), errors.As(err, &apiErr) && apiErr.Status >= 500:
		m.logger.Warn("could not validate session", "error", err)
		return err
	default:
		// Any other rejection of the validate call means the token is unusable.
		m.guard.ForceLogout(err.Error())
		return nil
	}

	if resp.Valid != nil && !*resp.Valid {
		m.guard.ForceLogout("token reported invalid")
		return nil
	}

	sess.IsAuthenticated = true
	if resp.User != nil {
		sess.User = resp.User
	}
	m.set(sess)
	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Warn("failed to persist validated session", "error", err)
	}
	m.guard.Arm()
	return nil
}

// Login authenticates against the backend and persists the new session.
func (m *Manager) Login(ctx context.Context, c *HTTPClient, req domain.LoginRequest) (*domain.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp domain.LoginResponse
	if err := c.Post(ctx, PathLogin, req, &resp, WithoutGuard()); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, domain.ErrServerRejected.WithDetails("login response carried no token")
	}

	sess := &domain.Session{Token: resp.Token, User: resp.User, IsAuthenticated: true}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	m.set(sess)
	m.guard.Arm()

	m.logger.Info("logged in", "email", req.Email)
	return sess.Clone(), nil
}

// Logout tells the backend (best effort) and clears the local session.
func (m *Manager) Logout(ctx context.Context, c *HTTPClient) error {
	if m.Token() != "" && c != nil {
		if err := c.Post(ctx, PathLogout, nil, nil, WithoutGuard()); err != nil {
			m.logger.Debug("server logout failed", "error", err)
		}
	}
	return m.clear(ctx)
}

func (m *Manager) set(s *domain.Session) {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
}

func (m *Manager) clear(ctx context.Context) error {
	m.set(nil)
	return m.store.Clear(ctx)
}
