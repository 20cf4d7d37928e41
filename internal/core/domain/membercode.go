package domain

// MemberCodeLength is the exact length of a member check-in code.
const MemberCodeLength = 8

// ValidMemberCode reports whether s is a member code: exactly 8 characters,
// each in [A-Za-z0-9]. Both the live scanner and manual lookups use it.
//
// Case is not folded. Whether the backend treats codes differing only by
// case as the same member is decided server side.
func ValidMemberCode(s string) bool {
	if len(s) != MemberCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// CheckMemberCode returns ErrInvalidMemberCode when s is not a valid code.
func CheckMemberCode(s string) error {
	if !ValidMemberCode(s) {
		return ErrInvalidMemberCode.WithDetails(s)
	}
	return nil
}
