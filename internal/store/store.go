package store

import "github.com/gymone/gymadmin/internal/telemetry/metric"

// PageSizes overrides the default page size of each store. Zero keeps the
// default.
type PageSizes struct {
	Members     int
	Memberships int
	Products    int
	Email       int
}

// Set is one instance of every domain store.
type Set struct {
	Members     *Members
	Memberships *Memberships
	Products    *Products
	Email       *Email
}

// NewSet creates all stores over the same dependencies.
func NewSet(deps Deps, sizes PageSizes) *Set {
	return &Set{
		Members:     NewMembers(deps, sizes.Members),
		Memberships: NewMemberships(deps, sizes.Memberships),
		Products:    NewProducts(deps, sizes.Products),
		Email:       NewEmail(deps, sizes.Email),
	}
}

// Sizers lists every collection for cache-size metrics.
func (s *Set) Sizers() []metric.CacheSizer {
	return []metric.CacheSizer{
		s.Members.Collection,
		s.Memberships.Collection,
		s.Products.Collection,
		s.Email.Logs,
		s.Email.Recipients,
	}
}
