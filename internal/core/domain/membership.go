package domain

// Membership is a membership plan with its pricing.
type Membership struct {
	ID            ID      `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Price         float64 `json:"price"`
	DurationDays  int     `json:"duration_days"`
	ActiveMembers int     `json:"active_members"`
	Status        string  `json:"status"`
	Description   string  `json:"description,omitempty" table:"wide"`
}

// PricingInput is the body of PUT /memberships/{id}/pricing.
type PricingInput struct {
	Price        float64 `json:"price"`
	DurationDays int     `json:"duration_days,omitempty"`
}

// Validate checks price and duration bounds.
func (in PricingInput) Validate() error {
	if in.Price < 0 {
		return Validationf("price cannot be negative")
	}
	if in.DurationDays < 0 {
		return Validationf("duration must be positive")
	}
	return nil
}

// MembershipMatches is the client-side filter predicate for memberships.
func MembershipMatches(m Membership, term string, status Status) bool {
	return status.Matches(m.Status) && ContainsFold(term, m.Name, m.Type)
}

// ExpiringMembership is one entry of GET /memberships/expiring.
type ExpiringMembership struct {
	UserID        ID     `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Type          string `json:"membership_type"`
	EndDate       string `json:"membership_end"`
	DaysRemaining int    `json:"days_remaining"`
}

// MembershipStats aggregates membership counts by type and status.
type MembershipStats struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	Expired  int            `json:"expired"`
	Expiring int            `json:"expiring_soon"`
	ByType   map[string]int `json:"by_type,omitempty"`
	Revenue  float64        `json:"revenue,omitempty"`
}
