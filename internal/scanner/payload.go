package scanner

import "strings"

// NormalizePayload reduces a scanned payload to the bare code. Member cards
// may encode a URL such as https://host/qr/lookup/AB12CD34?src=card, so
// everything up to the last slash is dropped, then everything from the first
// question mark.
func NormalizePayload(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	return s
}
