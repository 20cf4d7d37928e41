package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/gymone/gymadmin/internal/core/domain"
)

func testKey() []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = byte(i + 1)
	}
	return k
}

func testSession() *domain.Session {
	return &domain.Session{
		Token:           "eyJhbGciOi.payload.sig",
		User:            &domain.Principal{ID: "7", Email: "desk@gym.test", Name: "Front Desk", Role: "staff"},
		IsAuthenticated: true,
	}
}

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	if _, err := kv.Get(ctx, []byte("k")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get missing = %v, want ErrKeyNotFound", err)
	}

	val := []byte("v")
	if err := kv.Set(ctx, []byte("k"), val); err != nil {
		t.Fatal(err)
	}
	val[0] = 'x'
	got, err := kv.Get(ctx, []byte("k"))
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v; want \"v\" (values must be copied)", got, err)
	}

	if err := kv.Delete(ctx, []byte("k")); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete(ctx, []byte("k")); err != nil {
		t.Errorf("Delete missing key error = %v", err)
	}

	kv.Close()
	if err := kv.Set(ctx, []byte("k"), nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
}

func TestBadgerEngine(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultKVConfig(t.TempDir())
	cfg.GCInterval = 0

	e, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Set(ctx, []byte(SessionKey), []byte("blob")); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Reopen: the entry must survive the restart.
	e, err = NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	got, err := e.Get(ctx, []byte(SessionKey))
	if err != nil || string(got) != "blob" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
	if _, err := e.GC(ctx); err != nil {
		t.Errorf("GC() error = %v", err)
	}
	if len(e.Collectors()) != 2 {
		t.Error("expected two size collectors")
	}

	if err := e.Delete(ctx, []byte(SessionKey)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Get(ctx, []byte(SessionKey)); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after delete = %v, want ErrKeyNotFound", err)
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s, err := NewSessionStore(kv, testKey(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if sess, err := s.Load(ctx); err != nil || sess != nil {
		t.Fatalf("Load empty = %v, %v; want nil, nil", sess, err)
	}

	if err := s.Save(ctx, testSession()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, _ := kv.Get(ctx, []byte(SessionKey))
	if bytes.Contains(raw, []byte("eyJhbGciOi")) {
		t.Error("token stored in clear text")
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Token != testSession().Token || got.User.Email != "desk@gym.test" || !got.IsAuthenticated {
		t.Errorf("Load() = %+v", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if sess, _ := s.Load(ctx); sess != nil {
		t.Error("session still present after Clear")
	}
}

func TestSessionStore_RejectsInvalid(t *testing.T) {
	s, _ := NewSessionStore(NewMemoryKV(), testKey(), nil)
	err := s.Save(context.Background(), &domain.Session{IsAuthenticated: true})
	if !errors.Is(err, domain.ErrInvalidSession) {
		t.Errorf("Save(invalid) error = %v, want ErrInvalidSession", err)
	}
}

func TestSessionStore_CorruptEntryDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	writer, _ := NewSessionStore(kv, testKey(), nil)
	if err := writer.Save(ctx, testSession()); err != nil {
		t.Fatal(err)
	}

	// A different key cannot decrypt the entry.
	otherKey := make([]byte, 32)
	reader, _ := NewSessionStore(kv, otherKey, nil)
	sess, err := reader.Load(ctx)
	if err != nil || sess != nil {
		t.Fatalf("Load with wrong key = %v, %v; want nil, nil", sess, err)
	}
	if _, err := kv.Get(ctx, []byte(SessionKey)); !errors.Is(err, ErrKeyNotFound) {
		t.Error("corrupt entry was not deleted")
	}

	if err := kv.Set(ctx, []byte(SessionKey), []byte("garbage")); err != nil {
		t.Fatal(err)
	}
	if sess, _ := writer.Load(ctx); sess != nil {
		t.Error("garbage entry decoded as a session")
	}
}

func TestLoadKey(t *testing.T) {
	dir := t.TempDir()
	a, err := LoadKey(dir)
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadKey(dir)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) || len(a) != 32 {
		t.Error("LoadKey should return the same 32-byte key on reuse")
	}
}
