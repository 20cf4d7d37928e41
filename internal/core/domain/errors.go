package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError is a failure with a stable code of the form GYM-<AREA>-<NNNN>.
// Two DomainErrors match under errors.Is when their codes are equal, so the
// sentinels below can be decorated with details and causes freely.
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

// NewDomainError creates a sentinel.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString("[" + e.Code + "] " + e.Message)
	if e.Details != "" {
		b.WriteString(": " + e.Details)
	}
	return b.String()
}

func (e *DomainError) Unwrap() error { return e.Cause }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// WithDetails returns a copy carrying details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// Validationf returns an ErrValidation carrying the formatted details.
func Validationf(format string, args ...any) *DomainError {
	return ErrValidation.WithDetails(fmt.Sprintf(format, args...))
}

// Category groups errors by how the caller should react.
type Category int

const (
	CategoryUnknown Category = iota
	// CategorySession: sign in again.
	CategorySession
	// CategoryValidation: fix the input; nothing was sent.
	CategoryValidation
	// CategoryRejected: the server declined a well-formed request.
	CategoryRejected
	// CategoryTransient: no response; retrying may help.
	CategoryTransient
	// CategoryDevice: the camera or scanner cannot serve the request.
	CategoryDevice
)

func (c Category) String() string {
	switch c {
	case CategorySession:
		return "session"
	case CategoryValidation:
		return "validation"
	case CategoryRejected:
		return "rejected"
	case CategoryTransient:
		return "transient"
	case CategoryDevice:
		return "device"
	default:
		return "unknown"
	}
}

// CategoryOf classifies the outermost DomainError in err's chain.
func CategoryOf(err error) Category {
	var de *DomainError
	if !errors.As(err, &de) {
		return CategoryUnknown
	}
	switch {
	case errors.Is(de, ErrNetwork):
		return CategoryTransient
	case strings.HasPrefix(de.Code, "GYM-AUTH-"):
		return CategorySession
	case strings.HasPrefix(de.Code, "GYM-ARG-"):
		return CategoryValidation
	case strings.HasPrefix(de.Code, "GYM-API-"):
		return CategoryRejected
	case strings.HasPrefix(de.Code, "GYM-DEV-"):
		return CategoryDevice
	}
	return CategoryUnknown
}

// Session.
var (
	// ErrNotAuthenticated: no session is held for a call that needs one.
	ErrNotAuthenticated = NewDomainError("GYM-AUTH-4010", "not logged in")
	// ErrSessionExpired: the backend rejected the credential and the session
	// was torn down. Calls failing with it must not be retried.
	ErrSessionExpired = NewDomainError("GYM-AUTH-4011", "session expired, please log in again")
	// ErrInvalidSession: persisted session data violates its invariants.
	ErrInvalidSession = NewDomainError("GYM-AUTH-4001", "invalid session state")
)

// Input. Requests failing validation are never sent.
var (
	ErrValidation = NewDomainError("GYM-ARG-1001", "validation failed")
	// ErrInvalidMemberCode: not 8 alphanumeric characters.
	ErrInvalidMemberCode = NewDomainError("GYM-ARG-1002", "invalid member code")
)

// Backend.
var (
	ErrNotFound       = NewDomainError("GYM-API-4040", "resource not found")
	ErrServerRejected = NewDomainError("GYM-API-4220", "request rejected by server")
	// ErrNetwork: the request produced no HTTP response.
	ErrNetwork = NewDomainError("GYM-API-5030", "network error")
)

// Camera and scanner.
var (
	// ErrCameraUnavailable: no usable camera, or permission was denied.
	ErrCameraUnavailable = NewDomainError("GYM-DEV-5001", "camera not available")
	ErrScannerState      = NewDomainError("GYM-DEV-4091", "operation not allowed in current scanner state")
	ErrTorchUnsupported  = NewDomainError("GYM-DEV-5002", "torch not supported")
)
