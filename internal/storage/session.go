package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/pkg/crypto/adaptive"
	"github.com/gymone/gymadmin/pkg/secret"
)

// SessionKey is the single named entry holding the persisted session.
const SessionKey = "gymone.session"

// KeyFileName is the session key file under the data directory.
const KeyFileName = "session.key"

// SessionStore persists the session encrypted at rest.
type SessionStore struct {
	kv     KV
	key    []byte
	cipher adaptive.Cipher
	logger *slog.Logger
}

// LoadKey reads the session key from dataDir, creating it on first use.
func LoadKey(dataDir string) ([]byte, error) {
	key, _, err := secret.LoadOrCreate(filepath.Join(dataDir, KeyFileName), adaptive.KeySize)
	return key, err
}

// NewSessionStore wraps kv with encryption under key.
func NewSessionStore(kv KV, key []byte, logger *slog.Logger) (*SessionStore, error) {
	c, err := adaptive.New(key)
	if err != nil {
		return nil, fmt.Errorf("session cipher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("session store ready", "cipher", c.Type(), "key", secret.Fingerprint(key))
	return &SessionStore{kv: kv, key: key, cipher: c, logger: logger}, nil
}

// Load returns the persisted session, or nil when there is none.
// An entry that fails to decrypt, decode or validate is deleted and
// reported as no session.
func (s *SessionStore) Load(ctx context.Context) (*domain.Session, error) {
	blob, err := s.kv.Get(ctx, []byte(SessionKey))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess, err := s.decode(blob)
	if err != nil {
		s.logger.Warn("discarding unreadable session", "error", err)
		if derr := s.kv.Delete(ctx, []byte(SessionKey)); derr != nil {
			return nil, fmt.Errorf("delete corrupt session: %w", derr)
		}
		return nil, nil
	}
	return sess, nil
}

func (s *SessionStore) decode(blob []byte) (*domain.Session, error) {
	plain, err := adaptive.Open(s.key, blob, []byte(SessionKey))
	if err != nil {
		return nil, err
	}
	var sess domain.Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		return nil, err
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save persists sess, replacing any previous entry.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return s.Clear(ctx)
	}
	if err := sess.Validate(); err != nil {
		return err
	}
	plain, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	blob, err := adaptive.Seal(s.cipher, plain, []byte(SessionKey))
	if err != nil {
		return fmt.Errorf("encrypt session: %w", err)
	}
	if err := s.kv.Set(ctx, []byte(SessionKey), blob); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, []byte(SessionKey)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
