package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("GYM-TEST-1000", "test message"),
			expected: "[GYM-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("GYM-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[GYM-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("GYM-TEST-1000", "message 1")
	err2 := NewDomainError("GYM-TEST-1000", "message 2")
	err3 := NewDomainError("GYM-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("GYM-TEST-1000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	if errors.Unwrap(NewDomainError("GYM-TEST-1000", "no cause")) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("GYM-TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
	if withDetails.Code != original.Code {
		t.Error("WithDetails should preserve the code")
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"wrapped session", fmt.Errorf("fetch members: %w", ErrSessionExpired), CategorySession},
		{"not authenticated", ErrNotAuthenticated.WithDetails("x"), CategorySession},
		{"validation", Validationf("bad"), CategoryValidation},
		{"member code", ErrInvalidMemberCode, CategoryValidation},
		{"rejected", ErrServerRejected.WithCause(errors.New("422")), CategoryRejected},
		{"network", fmt.Errorf("get: %w", ErrNetwork.WithCause(errors.New("refused"))), CategoryTransient},
		{"camera", ErrCameraUnavailable, CategoryDevice},
		{"plain", errors.New("boom"), CategoryUnknown},
		{"nil", nil, CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryOf(tt.err); got != tt.want {
				t.Errorf("CategoryOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err  *DomainError
		code string
	}{
		{ErrNotAuthenticated, "GYM-AUTH-4010"},
		{ErrSessionExpired, "GYM-AUTH-4011"},
		{ErrInvalidSession, "GYM-AUTH-4001"},
		{ErrValidation, "GYM-ARG-1001"},
		{ErrInvalidMemberCode, "GYM-ARG-1002"},
		{ErrNotFound, "GYM-API-4040"},
		{ErrServerRejected, "GYM-API-4220"},
		{ErrNetwork, "GYM-API-5030"},
		{ErrCameraUnavailable, "GYM-DEV-5001"},
		{ErrScannerState, "GYM-DEV-4091"},
		{ErrTorchUnsupported, "GYM-DEV-5002"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Error code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Error message should not be empty")
			}
		})
	}
}

func TestValidationf(t *testing.T) {
	err := Validationf("quantity %d exceeds stock %d", 5, 3)
	if !errors.Is(err, ErrValidation) {
		t.Error("Validationf should produce an ErrValidation")
	}
	if err.Details != "quantity 5 exceeds stock 3" {
		t.Errorf("Details = %q", err.Details)
	}
}
