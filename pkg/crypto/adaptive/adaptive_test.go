package adaptive

import (
	"bytes"
	"errors"
	"testing"
)

func testKey() []byte {
	k := make([]byte, KeySize)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func TestNewWithType(t *testing.T) {
	tests := []struct {
		name    string
		typ     CipherType
		key     []byte
		wantErr bool
	}{
		{"aes", CipherAESGCM, testKey(), false},
		{"chacha", CipherChaCha20, testKey(), false},
		{"unknown", "rot13", testKey(), true},
		{"short key", CipherAESGCM, make([]byte, 16), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewWithType(tt.key, tt.typ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWithType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.Type() != tt.typ {
				t.Errorf("Type() = %s, want %s", c.Type(), tt.typ)
			}
		})
	}
}

func TestSealOpen(t *testing.T) {
	for _, typ := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(string(typ), func(t *testing.T) {
			c, err := NewWithType(testKey(), typ)
			if err != nil {
				t.Fatal(err)
			}
			plain := []byte(`{"token":"abc"}`)
			aad := []byte("gymone.session")

			blob, err := Seal(c, plain, aad)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if bytes.Contains(blob, plain) {
				t.Error("sealed blob contains plaintext")
			}

			got, err := Open(testKey(), blob, aad)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(got, plain) {
				t.Errorf("Open() = %q, want %q", got, plain)
			}
		})
	}
}

func TestOpen_Failures(t *testing.T) {
	c, _ := New(testKey())
	blob, err := Seal(c, []byte("payload"), []byte("a"))
	if err != nil {
		t.Fatal(err)
	}

	wrongKey := make([]byte, KeySize)
	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0xff

	tests := []struct {
		name string
		key  []byte
		blob []byte
		aad  []byte
		want error
	}{
		{"empty", testKey(), nil, nil, ErrShortBlob},
		{"bad tag", testKey(), []byte{9, 1, 2, 3}, nil, ErrUnknownTag},
		{"truncated", testKey(), blob[:4], []byte("a"), ErrShortBlob},
		{"wrong key", wrongKey, blob, []byte("a"), ErrAuthFailure},
		{"wrong aad", testKey(), blob, []byte("b"), ErrAuthFailure},
		{"tampered", testKey(), tampered, []byte("a"), ErrAuthFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.key, tt.blob, tt.aad)
			if !errors.Is(err, tt.want) {
				t.Errorf("Open() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncrypt_UniqueNonces(t *testing.T) {
	c, _ := New(testKey())
	a, _ := c.Encrypt([]byte("same"), nil)
	b, _ := c.Encrypt([]byte("same"), nil)
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same plaintext are identical")
	}
}
