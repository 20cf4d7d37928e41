package domain

import (
	"strings"
	"unicode"
)

// RecipientCategory is a server-computed bucket of members used for bulk email.
type RecipientCategory string

// Recipient categories.
const (
	RecipientsAll      RecipientCategory = "all"
	RecipientsActive   RecipientCategory = "active"
	RecipientsExpired  RecipientCategory = "expired"
	RecipientsExpiring RecipientCategory = "expiring"
	RecipientsInactive RecipientCategory = "inactive"
)

// ParseRecipientCategory validates a recipient category.
func ParseRecipientCategory(s string) (RecipientCategory, error) {
	switch c := RecipientCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case RecipientsAll, RecipientsActive, RecipientsExpired, RecipientsExpiring, RecipientsInactive:
		return c, nil
	default:
		return "", Validationf("unknown recipient category %q", s)
	}
}

// EmailTemplate is a server-side email template.
type EmailTemplate struct {
	ID        ID       `json:"id"`
	Name      string   `json:"name"`
	Subject   string   `json:"subject"`
	Variables []string `json:"variables,omitempty"`
	Body      string   `json:"body,omitempty" table:"-"`
}

// EmailRequest is the body of POST /emails/send and /emails/preview.
type EmailRequest struct {
	To         []string          `json:"to"`
	Subject    string            `json:"subject,omitempty"`
	HTML       string            `json:"html,omitempty"`
	TemplateID string            `json:"template_id,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// Validate checks recipients and content.
func (r EmailRequest) Validate() error {
	if len(r.To) == 0 {
		return Validationf("at least one recipient is required")
	}
	for _, to := range r.To {
		if !strings.Contains(to, "@") {
			return Validationf("invalid recipient %q", to)
		}
	}
	return validateContent(r.Subject, r.HTML, r.TemplateID)
}

// BulkEmailRequest is the body of POST /emails/bulk.
type BulkEmailRequest struct {
	UserIDs    []string          `json:"user_ids"`
	Subject    string            `json:"subject,omitempty"`
	HTML       string            `json:"html,omitempty"`
	TemplateID string            `json:"template_id,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// Validate checks recipients and content.
func (r BulkEmailRequest) Validate() error {
	if len(r.UserIDs) == 0 {
		return Validationf("at least one member is required")
	}
	return validateContent(r.Subject, r.HTML, r.TemplateID)
}

// CategoryEmailRequest is the body of POST /emails/bulk-by-category.
type CategoryEmailRequest struct {
	Category   RecipientCategory `json:"category"`
	Subject    string            `json:"subject,omitempty"`
	HTML       string            `json:"html,omitempty"`
	TemplateID string            `json:"template_id,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// Validate checks category and content.
func (r CategoryEmailRequest) Validate() error {
	if _, err := ParseRecipientCategory(string(r.Category)); err != nil {
		return err
	}
	return validateContent(r.Subject, r.HTML, r.TemplateID)
}

// TestEmailRequest is the body of POST /emails/test.
type TestEmailRequest struct {
	To         string `json:"to"`
	TemplateID string `json:"template_id,omitempty"`
}

func validateContent(subject, html, templateID string) error {
	if templateID != "" {
		return nil
	}
	if strings.TrimSpace(subject) == "" {
		return Validationf("subject is required without a template")
	}
	if strings.TrimSpace(html) == "" {
		return Validationf("body is required without a template")
	}
	return nil
}

// SendResult is the outcome of a send/bulk call.
type SendResult struct {
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// EmailPreview is the rendered preview of a message.
type EmailPreview struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// EmailLog is one delivery log entry.
type EmailLog struct {
	ID        ID     `json:"id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	SentAt    string `json:"sent_at"`
	Error     string `json:"error,omitempty" table:"wide"`
}

// Delivery statuses reported in email logs. The mail backend may report
// others; ParseDeliveryStatus accepts any single word.
const (
	DeliverySent    Status = "sent"
	DeliveryFailed  Status = "failed"
	DeliveryPending Status = "pending"
)

// ParseDeliveryStatus maps a delivery-log filter to a Status. "all" and ""
// map to StatusAll.
func ParseDeliveryStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "all":
		return StatusAll, nil
	case strings.ContainsFunc(s, unicode.IsSpace):
		return StatusAll, Validationf("unknown delivery status %q", s)
	}
	return Status(s), nil
}

// EmailLogMatches is the client-side filter predicate for email logs.
func EmailLogMatches(l EmailLog, term string, status Status) bool {
	return status.Matches(l.Status) && ContainsFold(term, l.Recipient, l.Subject)
}

// EmailStats summarizes deliveries over a period.
type EmailStats struct {
	Period    string  `json:"period"`
	Sent      int     `json:"sent"`
	Failed    int     `json:"failed"`
	Opened    int     `json:"opened,omitempty"`
	Delivered float64 `json:"delivery_rate,omitempty"`
}
