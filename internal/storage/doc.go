// Package storage persists the little state gymadmin keeps between runs.
//
// The only persisted entry is the session. It lives in an embedded Badger
// database under the data directory, encrypted with a key from a local
// key file. MemoryKV backs tests and --ephemeral runs.
package storage
