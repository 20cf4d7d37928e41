// Package adaptive encrypts small blobs at rest.
//
// The algorithm is picked from the hardware: AES-256-GCM where the CPU
// accelerates AES, ChaCha20-Poly1305 elsewhere. Sealed blobs carry a one
// byte algorithm tag so a blob written on one machine opens on another
// that would have picked the other cipher.
//
//	c, _ := adaptive.New(key)
//	blob, _ := adaptive.Seal(c, plaintext, aad)
//	plaintext, _ := adaptive.Open(key, blob, aad)
package adaptive
