package domain

import "strings"

// Status is an entity lifecycle status used by list filters.
type Status string

// Known statuses. StatusAll matches everything.
const (
	StatusAll       Status = ""
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusExpired   Status = "expired"
	StatusSuspended Status = "suspended"
)

// ParseStatus maps user input to a Status. "all" and "" map to StatusAll.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	case "expired":
		return StatusExpired, nil
	case "suspended":
		return StatusSuspended, nil
	default:
		return StatusAll, Validationf("unknown status %q", s)
	}
}

// Matches reports whether an entity status satisfies the filter.
func (s Status) Matches(entity string) bool {
	if s == StatusAll {
		return true
	}
	return strings.EqualFold(string(s), entity)
}

// ContainsFold reports whether any field contains term, case-insensitively.
// An empty term matches.
func ContainsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
