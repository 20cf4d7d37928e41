package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gymone/gymadmin/internal/core/domain"
)

// Memberships caches membership plans and their pricing.
type Memberships struct {
	*Collection[domain.Membership]
	api API
}

// NewMemberships creates the memberships store.
func NewMemberships(deps Deps, perPage int) *Memberships {
	return &Memberships{
		Collection: NewCollection(Config[domain.Membership]{
			Name:    "memberships",
			Path:    "/memberships",
			ListKey: "memberships",
			PerPage: perPage,
			ID:      func(m domain.Membership) domain.ID { return m.ID },
			Match:   domain.MembershipMatches,
		}, deps),
		api: deps.API,
	}
}

// UpdatePricing changes the price of plan id and replaces it in the list.
func (s *Memberships) UpdatePricing(ctx context.Context, id domain.ID, in domain.PricingInput) (domain.Membership, error) {
	if err := in.Validate(); err != nil {
		return domain.Membership{}, err
	}
	m, err := s.updateAt(ctx, "/memberships/"+url.PathEscape(id.String())+"/pricing", in)
	if err != nil {
		return m, err
	}
	if m.ID.IsZero() {
		// No echo: apply the new price locally.
		s.mutate(id, func(cur *domain.Membership) {
			cur.Price = in.Price
			if in.DurationDays > 0 {
				cur.DurationDays = in.DurationDays
			}
			m = *cur
		})
	}
	return m, nil
}

// Expiring lists memberships ending within days.
func (s *Memberships) Expiring(ctx context.Context, days int) ([]domain.ExpiringMembership, error) {
	if days <= 0 {
		return nil, domain.Validationf("days must be positive")
	}
	var page pageResponse[domain.ExpiringMembership]
	page.listKey = "memberships"
	if err := s.api.Get(ctx, "/memberships/expiring?days="+strconv.Itoa(days), &page); err != nil {
		return nil, fmt.Errorf("expiring memberships: %w", err)
	}
	return page.items, nil
}

// Stats returns membership aggregates.
func (s *Memberships) Stats(ctx context.Context) (*domain.MembershipStats, error) {
	var st domain.MembershipStats
	if err := s.api.Get(ctx, "/memberships/stats", &st); err != nil {
		return nil, fmt.Errorf("membership stats: %w", err)
	}
	return &st, nil
}
