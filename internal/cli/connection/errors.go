package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gymone/gymadmin/internal/core/domain"
)

// APIError is a non-success response from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (HTTP %d)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Unwrap maps the response onto the domain error taxonomy.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return domain.ErrServerRejected
}

// Codes the backend uses for a rejected credential.
var invalidTokenCodes = map[string]bool{
	"TOKEN_INVALID": true,
	"INVALID_TOKEN": true,
	"TOKEN_EXPIRED": true,
}

// Message fragments that mark a rejected credential, matched lowercase.
var invalidTokenPhrases = []string{
	"token is invalid",
	"unauthorized",
	"forbidden",
}

// IsInvalidToken reports whether err looks like an invalid or expired
// credential. It is a heuristic: a known error code, HTTP 403, or one of a
// few phrases in the message. False positives log the user out, which is
// the safe direction.
func IsInvalidToken(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if invalidTokenCodes[strings.ToUpper(apiErr.Code)] || apiErr.Status == http.StatusForbidden {
			return true
		}
		return matchesInvalidTokenPhrase(apiErr.Message)
	}
	return matchesInvalidTokenPhrase(err.Error())
}

func matchesInvalidTokenPhrase(msg string) bool {
	msg = strings.ToLower(msg)
	for _, p := range invalidTokenPhrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// errorBody covers the error shapes the backend emits:
//
//	{"code": "...", "message": "..."}
//	{"success": false, "message": "..."}
//	{"error": "..."}
//	{"error": {"code": "...", "message": "..."}}
type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		e.Code, e.Message = eb.Code, eb.Message
		if len(eb.Error) > 0 {
			var s string
			var nested struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			switch {
			case json.Unmarshal(eb.Error, &s) == nil:
				if e.Message == "" {
					e.Message = s
				}
			case json.Unmarshal(eb.Error, &nested) == nil:
				if e.Code == "" {
					e.Code = nested.Code
				}
				if e.Message == "" {
					e.Message = nested.Message
				}
			}
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = "request failed"
	}
	return e
}
