package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/gymone/gymadmin/internal/cli/connection"
	"github.com/gymone/gymadmin/internal/core/domain"
)

// Page sizes of the email store.
const (
	RecipientsPerPage = 100
	EmailLogsPerPage  = 50
)

// Email sends messages and caches delivery logs and recipient candidates.
type Email struct {
	// Logs is the delivery log cache, paged by offset.
	Logs *Collection[domain.EmailLog]
	// Recipients is a large member page preloaded for recipient pickers.
	Recipients *Collection[domain.Member]

	api API
}

// NewEmail creates the email store. perPage <= 0 uses RecipientsPerPage.
func NewEmail(deps Deps, perPage int) *Email {
	if perPage <= 0 {
		perPage = RecipientsPerPage
	}
	return &Email{
		Logs: NewCollection(Config[domain.EmailLog]{
			Name:    "email_logs",
			Path:    "/emails/logs",
			ListKey: "logs",
			PerPage: EmailLogsPerPage,
			ID:      func(l domain.EmailLog) domain.ID { return l.ID },
			Match:   domain.EmailLogMatches,
		}, deps),
		Recipients: NewCollection(Config[domain.Member]{
			Name:    "email_recipients",
			Path:    "/users",
			ListKey: "users",
			PerPage: perPage,
			ID:      func(m domain.Member) domain.ID { return m.ID },
			Match:   domain.MemberMatches,
		}, deps),
		api: deps.API,
	}
}

// Templates lists the server-side templates.
func (s *Email) Templates(ctx context.Context) ([]domain.EmailTemplate, error) {
	var page pageResponse[domain.EmailTemplate]
	page.listKey = "templates"
	if err := s.api.Get(ctx, "/emails/templates", &page); err != nil {
		return nil, fmt.Errorf("email templates: %w", err)
	}
	return page.items, nil
}

// Send sends a message to explicit addresses.
func (s *Email) Send(ctx context.Context, req domain.EmailRequest) (*domain.SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.post(ctx, "/emails/send", req)
}

// Bulk sends a message to the given members.
func (s *Email) Bulk(ctx context.Context, req domain.BulkEmailRequest) (*domain.SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.post(ctx, "/emails/bulk", req)
}

// BulkByCategory sends a message to a server-computed recipient category.
func (s *Email) BulkByCategory(ctx context.Context, req domain.CategoryEmailRequest) (*domain.SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.post(ctx, "/emails/bulk-by-category", req)
}

// Test sends a test message to one address.
func (s *Email) Test(ctx context.Context, req domain.TestEmailRequest) (*domain.SendResult, error) {
	if req.To == "" {
		return nil, domain.Validationf("recipient is required")
	}
	return s.post(ctx, "/emails/test", req)
}

func (s *Email) post(ctx context.Context, path string, body any) (*domain.SendResult, error) {
	var res domain.SendResult
	if err := s.api.Post(ctx, path, body, &res, connection.WithIdempotencyKey(uuid.NewString())); err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	return &res, nil
}

// Preview renders a message server-side without sending it.
func (s *Email) Preview(ctx context.Context, req domain.EmailRequest) (*domain.EmailPreview, error) {
	if req.TemplateID == "" && req.HTML == "" {
		return nil, domain.Validationf("body or template is required")
	}
	var p domain.EmailPreview
	if err := s.api.Post(ctx, "/emails/preview", req, &p); err != nil {
		return nil, fmt.Errorf("preview email: %w", err)
	}
	return &p, nil
}

// FetchLogs loads delivery logs by offset into the Logs cache. The cache
// page is offset/limit+1.
func (s *Email) FetchLogs(ctx context.Context, offset, limit int) error {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = s.Logs.PerPage()
	}
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return s.Logs.fetch(ctx, offset/limit+1, "", q, limit)
}

// Stats returns delivery statistics for period (e.g. "7d", "30d").
func (s *Email) Stats(ctx context.Context, period string) (*domain.EmailStats, error) {
	path := "/emails/stats"
	if period != "" {
		path += "?period=" + url.QueryEscape(period)
	}
	var st domain.EmailStats
	if err := s.api.Get(ctx, path, &st); err != nil {
		return nil, fmt.Errorf("email stats: %w", err)
	}
	return &st, nil
}

// PreloadRecipients fills Recipients with the first page of members.
func (s *Email) PreloadRecipients(ctx context.Context) error {
	return s.Recipients.FetchList(ctx, 1, "")
}
