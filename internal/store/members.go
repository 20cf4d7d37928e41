package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gymone/gymadmin/internal/core/domain"
)

// MembersPerPage is the members page size.
const MembersPerPage = 20

// Members caches gym members and exposes their QR credentials.
type Members struct {
	*Collection[domain.Member]
	api API
}

// NewMembers creates the members store. perPage <= 0 uses MembersPerPage.
func NewMembers(deps Deps, perPage int) *Members {
	if perPage <= 0 {
		perPage = MembersPerPage
	}
	return &Members{
		Collection: NewCollection(Config[domain.Member]{
			Name:    "members",
			Path:    "/users",
			ListKey: "users",
			PerPage: perPage,
			ID:      func(m domain.Member) domain.ID { return m.ID },
			Match:   domain.MemberMatches,
		}, deps),
		api: deps.API,
	}
}

// Create validates in and creates the member.
func (s *Members) Create(ctx context.Context, in domain.MemberInput) (domain.Member, error) {
	if err := in.Validate(); err != nil {
		return domain.Member{}, err
	}
	return s.Collection.Create(ctx, in)
}

// Update validates in and updates member id.
func (s *Members) Update(ctx context.Context, id domain.ID, in domain.MemberInput) (domain.Member, error) {
	if err := in.Validate(); err != nil {
		return domain.Member{}, err
	}
	return s.Collection.Update(ctx, id, in)
}

// QRCode returns the check-in credential of member id.
func (s *Members) QRCode(ctx context.Context, id domain.ID) (*domain.QRInfo, error) {
	var info domain.QRInfo
	if err := s.api.Get(ctx, "/qr/user/"+url.PathEscape(id.String()), &info); err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	return &info, nil
}

// GenerateQR issues a new credential for member id. The cached member
// picks up the new code when the server reports it.
func (s *Members) GenerateQR(ctx context.Context, id domain.ID) (*domain.QRInfo, error) {
	var info domain.QRInfo
	if err := s.api.Post(ctx, "/qr/generate/"+url.PathEscape(id.String()), nil, &info); err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	if info.UniqueID != "" {
		s.mutate(id, func(m *domain.Member) { m.UniqueID = info.UniqueID })
	}
	return &info, nil
}

// Lookup resolves a member code. An invalid code is rejected locally and
// never sent.
func (s *Members) Lookup(ctx context.Context, code string) (*domain.LookupResult, error) {
	if err := domain.CheckMemberCode(code); err != nil {
		return nil, err
	}
	var res domain.LookupResult
	if err := s.api.Get(ctx, "/qr/lookup?unique_id="+url.QueryEscape(code), &res); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", code, err)
	}
	return &res, nil
}

// QRStatistics returns credential usage statistics.
func (s *Members) QRStatistics(ctx context.Context) (*domain.QRStatistics, error) {
	var st domain.QRStatistics
	if err := s.api.Get(ctx, "/qr/statistics", &st); err != nil {
		return nil, fmt.Errorf("qr statistics: %w", err)
	}
	return &st, nil
}
