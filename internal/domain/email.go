package domain

import (
	"context"
	"time"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// InlineImage is an image embedded in an email's HTML body, referenced by
// Content-ID ("cid:<CID>"). Each ticket's QR image is its own part, so a
// broken image for one ticket does not break the others.
type InlineImage struct {
	CID         string
	ContentType string
	Data        []byte
}

// EmailMessage is one outgoing email. HTMLBody must carry the event summary
// directly; the attachment is supplementary.
type EmailMessage struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
	Inline      []InlineImage
}

// DeliveryReceipt is the transport's acknowledgement of one accepted send.
type DeliveryReceipt struct {
	MessageID string
	SentAt    time.Time
}

// Mailer defines the contract for sending emails (infrastructure port).
// Implementations must not retry on their own beyond the transport's policy;
// retries are the caller's responsibility.
type Mailer interface {
	Send(ctx context.Context, msg *EmailMessage) (*DeliveryReceipt, error)
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// TicketEmailItem is one ticket as it appears in the ticket email.
type TicketEmailItem struct {
	Number     string
	HolderName string
	QRPNG      []byte
}

// TicketEmailData holds data for the ticket bundle email.
type TicketEmailData struct {
	To         string
	BookerName string
	EventTitle string
	EventDate  string
	EventTime  string
	EventVenue string
	EventCity  string
	Tickets    []TicketEmailItem
	// Attachment is the rendered ticket document. Nil for the HTML-inline
	// variant, where the body alone carries the tickets.
	Attachment *Attachment
}

// InvitationEmailData holds data for the private event invitation email.
type InvitationEmailData struct {
	Email       string
	InviterName string
	EventTitle  string
	EventDate   string
	EventVenue  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendTicketBundle(ctx context.Context, data *TicketEmailData) (*DeliveryReceipt, error)
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
}
