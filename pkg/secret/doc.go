// Package secret manages local key material.
//
// Keys are random bytes from crypto/rand kept in a file readable only by
// the owner. Fingerprint gives a short, log-safe identifier for a key.
package secret
