package storage

import (
	"context"
	"errors"
	"path/filepath"
	"time"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// KV holds the persisted session. BadgerEngine backs it on disk and
// MemoryKV for --ephemeral runs. Implementations are safe for concurrent use.
type KV interface {
	// Get returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key []byte) error
	Close() error
}

// KVConfig configures the on-disk engine.
type KVConfig struct {
	// Dir is the Badger directory.
	Dir string

	// GCInterval is the period of value log GC while the process runs.
	// Zero disables it.
	GCInterval time.Duration

	// GCThreshold is the value log discard ratio that triggers a rewrite.
	// Default: 0.5
	GCThreshold float64

	// ValueLogFileSize caps a value log file in bytes. The session entry is
	// tiny, so this stays small.
	// Default: 16MB
	ValueLogFileSize int64

	// SyncWrites fsyncs every write so a login survives a crash.
	// Default: true
	SyncWrites bool
}

// DefaultKVConfig returns the default configuration for a data directory.
func DefaultKVConfig(dataDir string) KVConfig {
	return KVConfig{
		Dir:              filepath.Join(dataDir, "kv"),
		GCInterval:       10 * time.Minute,
		GCThreshold:      0.5,
		ValueLogFileSize: 16 << 20,
		SyncWrites:       true,
	}
}
