package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mojotix/internal/domain"
)

// fakeMailer records sent messages.
type fakeMailer struct {
	sent []*domain.EmailMessage
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg *domain.EmailMessage) (*domain.DeliveryReceipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, msg)
	return &domain.DeliveryReceipt{MessageID: fmt.Sprintf("msg-%d", len(f.sent)), SentAt: time.Now()}, nil
}

// fakeTemplateRenderer echoes the template name so tests can see which one was used.
type fakeTemplateRenderer struct {
	lastName string
	lastData any
	err      error
}

func (f *fakeTemplateRenderer) Render(templateName string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	f.lastName = templateName
	f.lastData = data
	return "subject:" + templateName, "<html>" + templateName + "</html>", "text:" + templateName, nil
}

func bundleData(ticketCount int, withAttachment bool) *domain.TicketEmailData {
	data := &domain.TicketEmailData{
		To:         "ada@example.com",
		BookerName: "Ada Lovelace",
		EventTitle: "Jazz Night",
		EventDate:  "Wed, 01 Apr 2026",
		EventTime:  "19:30",
		EventVenue: "Blue Hall",
		EventCity:  "Lagos",
	}
	for i := 1; i <= ticketCount; i++ {
		data.Tickets = append(data.Tickets, domain.TicketEmailItem{
			Number:     fmt.Sprintf("MJ-1-%03d", i),
			HolderName: "Ada Lovelace",
			QRPNG:      []byte(fmt.Sprintf("png-%d", i)),
		})
	}
	if withAttachment {
		data.Attachment = &domain.Attachment{
			Filename:    "tickets.pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-fake"),
		}
	}
	return data
}

func TestEmailService_SendTicketBundle(t *testing.T) {
	ctx := context.Background()

	t.Run("each ticket gets its own inline QR part", func(t *testing.T) {
		mailer := &fakeMailer{}
		renderer := &fakeTemplateRenderer{}
		svc := NewEmailService(mailer, renderer)

		receipt, err := svc.SendTicketBundle(ctx, bundleData(3, true))
		require.NoError(t, err)
		assert.NotEmpty(t, receipt.MessageID)

		require.Len(t, mailer.sent, 1)
		msg := mailer.sent[0]
		assert.Equal(t, "ada@example.com", msg.To)
		assert.Equal(t, "subject:ticket_bundle", msg.Subject)
		require.Len(t, msg.Inline, 3)
		cids := map[string]bool{}
		for i, img := range msg.Inline {
			cids[img.CID] = true
			assert.Equal(t, "image/png", img.ContentType)
			assert.Equal(t, []byte(fmt.Sprintf("png-%d", i+1)), img.Data)
		}
		assert.Len(t, cids, 3, "inline QR content IDs must be distinct")
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "tickets.pdf", msg.Attachments[0].Filename)
	})

	t.Run("inline variant carries no attachment", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewEmailService(mailer, &fakeTemplateRenderer{})

		_, err := svc.SendTicketBundle(ctx, bundleData(2, false))
		require.NoError(t, err)
		assert.Empty(t, mailer.sent[0].Attachments)
		assert.Len(t, mailer.sent[0].Inline, 2)
	})

	t.Run("empty ticket list is rejected", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeTemplateRenderer{})
		_, err := svc.SendTicketBundle(ctx, bundleData(0, false))
		require.Error(t, err)
	})

	t.Run("transport failure surfaces", func(t *testing.T) {
		mailer := &fakeMailer{err: errors.New("ses throttled")}
		svc := NewEmailService(mailer, &fakeTemplateRenderer{})
		_, err := svc.SendTicketBundle(ctx, bundleData(1, false))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ses throttled")
	})

	t.Run("template failure surfaces", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeTemplateRenderer{err: errors.New("missing template")})
		_, err := svc.SendTicketBundle(ctx, bundleData(1, false))
		require.Error(t, err)
	})
}

func TestEmailService_SendInvitation(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	renderer := &fakeTemplateRenderer{}
	svc := NewEmailService(mailer, renderer)

	err := svc.SendInvitation(ctx, &domain.InvitationEmailData{
		Email:       "guest@example.com",
		InviterName: "Olu Owner",
		EventTitle:  "Secret Gig",
		EventDate:   "Fri, 01 May 2026",
		EventVenue:  "Hall A",
	})
	require.NoError(t, err)
	assert.Equal(t, "invitation", renderer.lastName)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "guest@example.com", mailer.sent[0].To)
	assert.Empty(t, mailer.sent[0].Inline)
}
