package logger

import (
	"log/slog"
	"slices"
	"strings"
)

const redactedValue = "***REDACTED***"

// Attribute keys whose values are credentials: the login password, the
// backend bearer token and anything that looks like one.
var sensitiveKeys = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"authorization",
	"cookie",
	"api_key",
}

// credentialPrefixes mark a value as a credential whatever its key. "eyJ"
// is the base64url form of a JWT header.
var credentialPrefixes = []string{"Bearer ", "eyJ"}

// IsSensitiveKey reports whether an attribute or flag name suggests a
// credential.
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	return slices.ContainsFunc(sensitiveKeys, func(s string) bool {
		return strings.Contains(key, s)
	})
}

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if prefix, ok := credentialPrefix(v); ok {
			return slog.String(a.Key, mask(v, prefix))
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = redactSensitive(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

func credentialPrefix(v string) (string, bool) {
	for _, p := range credentialPrefixes {
		if strings.HasPrefix(v, p) {
			return p, true
		}
	}
	return "", false
}

// mask keeps prefix and three characters at each end of the rest.
func mask(v, prefix string) string {
	body := strings.TrimPrefix(v, prefix)
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

// RedactToken masks a bearer token for display, as in `auth status`.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	prefix, _ := credentialPrefix(token)
	return mask(token, prefix)
}
