package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateBytes(t *testing.T) {
	a, err := GenerateBytes(32)
	if err != nil {
		t.Fatalf("GenerateBytes() error = %v", err)
	}
	b, _ := GenerateBytes(32)
	if len(a) != 32 {
		t.Errorf("len = %d, want 32", len(a))
	}
	if Equal(a, b) {
		t.Error("two generated keys are equal")
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.key")

	key, created, err := LoadOrCreate(path, 32)
	if err != nil {
		t.Fatalf("LoadOrCreate() error = %v", err)
	}
	if !created {
		t.Error("first call should create the key")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file mode = %o, want 600", perm)
	}

	again, created, err := LoadOrCreate(path, 32)
	if err != nil {
		t.Fatalf("second LoadOrCreate() error = %v", err)
	}
	if created {
		t.Error("second call should load the existing key")
	}
	if !Equal(key, again) {
		t.Error("reloaded key differs")
	}
}

func TestLoadOrCreate_WrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.key")
	if err := os.WriteFile(path, []byte("short"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadOrCreate(path, 32); err == nil {
		t.Error("expected error for wrong-size key file")
	}
}

func TestFingerprint(t *testing.T) {
	key := make([]byte, 32)
	fp := Fingerprint(key)
	if len(fp) != 16 {
		t.Errorf("Fingerprint length = %d, want 16", len(fp))
	}
	if fp != Fingerprint(key) {
		t.Error("Fingerprint not deterministic")
	}
	key[0] = 1
	if fp == Fingerprint(key) {
		t.Error("different keys share a fingerprint")
	}
}
