package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// KeySize is the key length accepted by both algorithms.
const KeySize = 32

// Errors returned by Open.
var (
	ErrShortBlob   = errors.New("adaptive: sealed blob too short")
	ErrUnknownTag  = errors.New("adaptive: unknown algorithm tag")
	ErrInvalidKey  = errors.New("adaptive: key must be 32 bytes")
	ErrAuthFailure = errors.New("adaptive: message authentication failed")
)

// Cipher provides authenticated encryption. Ciphertexts are nonce-prefixed.
type Cipher interface {
	Type() CipherType
	Encrypt(plaintext, additionalData []byte) ([]byte, error)
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
	Overhead() int
}

// New picks AES-GCM on hardware with AES acceleration, ChaCha20 otherwise.
func New(key []byte) (Cipher, error) {
	if hasAESNI() {
		return NewWithType(key, CipherAESGCM)
	}
	return NewWithType(key, CipherChaCha20)
}

// NewWithType creates a cipher of the specified type.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch cipherType {
	case CipherAESGCM:
		var block cipher.Block
		if block, err = aes.NewCipher(key); err != nil {
			return nil, err
		}
		aead, err = cipher.NewGCM(block)
	case CipherChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown cipher type %q", cipherType)
	}
	if err != nil {
		return nil, err
	}
	return &aeadCipher{typ: cipherType, aead: aead}, nil
}

// Go uses AES instructions on amd64 and arm64 when present.
func hasAESNI() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

type aeadCipher struct {
	typ  CipherType
	aead cipher.AEAD
}

func (c *aeadCipher) Type() CipherType { return c.typ }
func (c *aeadCipher) NonceSize() int   { return c.aead.NonceSize() }
func (c *aeadCipher) Overhead() int    { return c.aead.Overhead() }

func (c *aeadCipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

func (c *aeadCipher) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(ciphertext) < ns+c.aead.Overhead() {
		return nil, ErrShortBlob
	}
	out, err := c.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], additionalData)
	if err != nil {
		return nil, ErrAuthFailure
	}
	return out, nil
}

const (
	tagAESGCM   byte = 1
	tagChaCha20 byte = 2
)

func tagFor(t CipherType) (byte, error) {
	switch t {
	case CipherAESGCM:
		return tagAESGCM, nil
	case CipherChaCha20:
		return tagChaCha20, nil
	default:
		return 0, ErrUnknownTag
	}
}

// Seal encrypts plaintext and prefixes the algorithm tag.
func Seal(c Cipher, plaintext, additionalData []byte) ([]byte, error) {
	tag, err := tagFor(c.Type())
	if err != nil {
		return nil, err
	}
	ct, err := c.Encrypt(plaintext, additionalData)
	if err != nil {
		return nil, err
	}
	return append([]byte{tag}, ct...), nil
}

// Open decrypts a blob produced by Seal, using the algorithm named by its tag.
func Open(key, blob, additionalData []byte) ([]byte, error) {
	if len(blob) < 1 {
		return nil, ErrShortBlob
	}
	var typ CipherType
	switch blob[0] {
	case tagAESGCM:
		typ = CipherAESGCM
	case tagChaCha20:
		typ = CipherChaCha20
	default:
		return nil, ErrUnknownTag
	}
	c, err := NewWithType(key, typ)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(blob[1:], additionalData)
}
