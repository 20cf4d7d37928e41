package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidMemberCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"AB12CD34", true},
		{"ab12CD34", true},
		{"abcdefgh", true},
		{"12345678", true},
		{"AB12CD3", false},   // 7 chars
		{"AB12CD345", false}, // 9 chars
		{"AB12CD3!", false},
		{"AB12 D34", false},
		{"AB12-D34", false},
		{"AB12ÇD34", false}, // multi-byte letter
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ValidMemberCode(tt.code); got != tt.want {
				t.Errorf("ValidMemberCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

// Every 8-byte string over the alphanumeric set is valid, and replacing any
// position with a byte outside it makes it invalid.
func TestValidMemberCode_Exhaustive(t *testing.T) {
	const alnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	base := []byte("Aa0Zz9Mm")
	if !ValidMemberCode(string(base)) {
		t.Fatalf("base code should be valid")
	}

	for b := 0; b < 256; b++ {
		for pos := 0; pos < len(base); pos++ {
			code := make([]byte, len(base))
			copy(code, base)
			code[pos] = byte(b)
			want := strings.IndexByte(alnum, byte(b)) >= 0
			if got := ValidMemberCode(string(code)); got != want {
				t.Fatalf("ValidMemberCode(%q) = %v, want %v", code, got, want)
			}
		}
	}
}

func TestCheckMemberCode(t *testing.T) {
	if err := CheckMemberCode("AB12CD34"); err != nil {
		t.Errorf("CheckMemberCode() error = %v", err)
	}
	err := CheckMemberCode("nope")
	if !errors.Is(err, ErrInvalidMemberCode) {
		t.Errorf("CheckMemberCode() error = %v, want ErrInvalidMemberCode", err)
	}
}
