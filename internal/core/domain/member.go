package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Member is a gym member as returned by /users.
type Member struct {
	ID              ID     `json:"id"`
	UniqueID        string `json:"unique_id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Status          string `json:"status"`
	MembershipType  string `json:"membership_type,omitempty"`
	MembershipStart string `json:"membership_start,omitempty" table:"wide"`
	MembershipEnd   string `json:"membership_end,omitempty"`
	CreatedAt       string `json:"created_at,omitempty" table:"wide"`
	UpdatedAt       string `json:"updated_at,omitempty" table:"-"`
}

// FullName returns "First Last".
func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// MemberInput is the create/update payload for a member.
type MemberInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	MembershipType  string `json:"membership_type,omitempty"`
	MembershipStart string `json:"membership_start,omitempty"`
	MembershipEnd   string `json:"membership_end,omitempty"`
	Status          string `json:"status,omitempty"`
}

// Validate checks required fields, email shape and date ordering.
func (in MemberInput) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return Validationf("first name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return Validationf("last name is required")
	}
	if !strings.Contains(in.Email, "@") {
		return Validationf("email must be valid")
	}
	if in.Status != "" {
		if _, err := ParseStatus(in.Status); err != nil {
			return err
		}
	}
	return validateDateRange(in.MembershipStart, in.MembershipEnd)
}

func validateDateRange(start, end string) error {
	var s, e time.Time
	var err error
	if start != "" {
		if s, err = time.Parse(DateLayout, start); err != nil {
			return Validationf("membership start must be YYYY-MM-DD")
		}
	}
	if end != "" {
		if e, err = time.Parse(DateLayout, end); err != nil {
			return Validationf("membership end must be YYYY-MM-DD")
		}
	}
	if !s.IsZero() && !e.IsZero() && !s.Before(e) {
		return Validationf("membership start must be before membership end")
	}
	return nil
}

// MemberMatches is the client-side filter predicate for members.
func MemberMatches(m Member, term string, status Status) bool {
	return status.Matches(m.Status) &&
		ContainsFold(term, m.FirstName, m.LastName, m.Email, m.Phone, m.UniqueID)
}

// QRInfo is the check-in credential of a member.
type QRInfo struct {
	UserID    ID     `json:"user_id"`
	UniqueID  string `json:"unique_id"`
	QRCode    string `json:"qr_code,omitempty" table:"-"`
	QRURL     string `json:"qr_url,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// QRStatistics summarizes check-in credential usage.
type QRStatistics struct {
	TotalCodes    int            `json:"total_codes"`
	ActiveCodes   int            `json:"active_codes"`
	ScansToday    int            `json:"scans_today"`
	ScansThisWeek int            `json:"scans_this_week"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// LookupResult is the answer of GET /qr/lookup.
type LookupResult struct {
	Member     Member `json:"user"`
	Membership string `json:"membership_status,omitempty"`
	Valid      bool   `json:"valid"`
	Message    string `json:"message,omitempty"`
}
