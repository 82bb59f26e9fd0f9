package services

import (
	"context"
	"fmt"

	"mojotix/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// ticketBundleTicket is the per-ticket view passed to the ticket_bundle templates.
type ticketBundleTicket struct {
	Number     string
	HolderName string
	QRCID      string
}

type ticketBundleData struct {
	BookerName    string
	EventTitle    string
	EventDate     string
	EventTime     string
	EventVenue    string
	EventCity     string
	Tickets       []ticketBundleTicket
	HasAttachment bool
}

// SendTicketBundle sends the ticket email for one booking: event summary in
// the HTML body, one inline QR image per ticket, and the rendered ticket
// document attached when present. One call is one send attempt; the caller
// owns retries.
func (s *emailService) SendTicketBundle(ctx context.Context, data *domain.TicketEmailData) (*domain.DeliveryReceipt, error) {
	if data == nil {
		return nil, fmt.Errorf("ticket email data is nil")
	}
	if len(data.Tickets) == 0 {
		return nil, fmt.Errorf("ticket email has no tickets")
	}

	tmplData := ticketBundleData{
		BookerName:    data.BookerName,
		EventTitle:    data.EventTitle,
		EventDate:     data.EventDate,
		EventTime:     data.EventTime,
		EventVenue:    data.EventVenue,
		EventCity:     data.EventCity,
		HasAttachment: data.Attachment != nil,
	}
	var inline []domain.InlineImage
	for i, t := range data.Tickets {
		cid := fmt.Sprintf("qr-%d", i+1)
		tmplData.Tickets = append(tmplData.Tickets, ticketBundleTicket{
			Number:     t.Number,
			HolderName: t.HolderName,
			QRCID:      cid,
		})
		inline = append(inline, domain.InlineImage{
			CID:         cid,
			ContentType: "image/png",
			Data:        t.QRPNG,
		})
	}

	subject, htmlBody, textBody, err := s.renderer.Render("ticket_bundle", tmplData)
	if err != nil {
		return nil, fmt.Errorf("failed to render ticket_bundle template: %w", err)
	}

	msg := &domain.EmailMessage{
		To:       data.To,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
		Inline:   inline,
	}
	if data.Attachment != nil {
		msg.Attachments = []domain.Attachment{*data.Attachment}
	}

	receipt, err := s.mailer.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send ticket email: %w", err)
	}
	return receipt, nil
}

// SendInvitation sends a private event invitation email using the "invitation" template.
func (s *emailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("invitation", data)
	if err != nil {
		return fmt.Errorf("failed to render invitation template: %w", err)
	}
	if _, err := s.mailer.Send(ctx, &domain.EmailMessage{
		To:       data.Email,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}
