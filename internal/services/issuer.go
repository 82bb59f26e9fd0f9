package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mojotix/internal/domain"
)

// IssuerConfig bounds the issuance pipeline's side-effecting calls.
type IssuerConfig struct {
	// MaxEmailAttempts is the total number of email send attempts before the
	// booking lands in delivery_failed.
	MaxEmailAttempts int
	// RetryBackoff is the wait before the second attempt; it doubles per attempt.
	RetryBackoff time.Duration
	// StepTimeout bounds each render and transport call. A timed-out step is a
	// failure, never a silent success.
	StepTimeout time.Duration
}

type ticketIssuer struct {
	bookingRepo  domain.BookingRepository
	ticketRepo   domain.TicketRepository
	credentials  domain.CredentialGenerator
	renderer     domain.TicketRenderer
	emailService domain.EmailService
	messenger    domain.Messenger
	logger       *slog.Logger
	cfg          IssuerConfig

	sleep func(context.Context, time.Duration) error
}

// NewTicketIssuer wires the issuance pipeline. The renderer is whichever
// TicketRenderer strategy the caller picked (PDF or HTML); the issuer does not
// care which.
func NewTicketIssuer(
	bookingRepo domain.BookingRepository,
	ticketRepo domain.TicketRepository,
	credentials domain.CredentialGenerator,
	renderer domain.TicketRenderer,
	emailService domain.EmailService,
	messenger domain.Messenger,
	logger *slog.Logger,
	cfg IssuerConfig,
) domain.TicketIssuer {
	if cfg.MaxEmailAttempts < 1 {
		cfg.MaxEmailAttempts = 1
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 30 * time.Second
	}
	return &ticketIssuer{
		bookingRepo:  bookingRepo,
		ticketRepo:   ticketRepo,
		credentials:  credentials,
		renderer:     renderer,
		emailService: emailService,
		messenger:    messenger,
		logger:       logger,
		cfg:          cfg,
		sleep:        sleepCtx,
	}
}

// Issue runs the pipeline for one confirmed booking:
//
//	minting -> rendering -> dispatching -> delivered
//
// The state is persisted before every side-effecting step, so a crash leaves
// recoverable state and a re-run resumes with the tickets already minted.
// Any failure moves the booking to delivery_failed with the cause recorded;
// the tickets themselves persist and stay resendable.
func (s *ticketIssuer) Issue(ctx context.Context, booking *domain.Booking, event *domain.Event) error {
	// Pre-send state check: a booking that is already delivered is never
	// re-dispatched, so duplicate Issue calls cannot duplicate emails. When the
	// state cannot be read the pipeline fails closed rather than risk a
	// duplicate send against stale state.
	current, err := s.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		return fmt.Errorf("read delivery state for booking %s: %w", booking.ID, err)
	}
	if current.DeliveryStatus == domain.DeliveryStatusDelivered {
		s.logger.Info("booking already delivered, skipping issuance", "booking_id", booking.ID)
		return nil
	}

	tickets, err := s.mint(ctx, booking)
	if err != nil {
		return s.fail(ctx, booking, event, fmt.Errorf("minting: %w", err))
	}

	doc, qrs, err := s.render(ctx, booking, event, tickets)
	if err != nil {
		return s.fail(ctx, booking, event, fmt.Errorf("rendering: %w", err))
	}

	receipt, err := s.dispatchEmail(ctx, booking, event, tickets, qrs, doc)
	if err != nil {
		return s.fail(ctx, booking, event, fmt.Errorf("dispatching: %w", err))
	}

	// The WhatsApp summary is best-effort: its outcome is logged but never
	// blocks Delivered.
	s.dispatchMessage(ctx, booking, event)

	if err := s.bookingRepo.UpdateDeliveryStatus(ctx, booking.ID, domain.DeliveryStatusDelivered, nil); err != nil {
		return fmt.Errorf("persist delivered state for booking %s: %w", booking.ID, err)
	}
	booking.DeliveryStatus = domain.DeliveryStatusDelivered
	booking.DeliveryError = nil
	s.logger.Info("tickets delivered",
		"booking_id", booking.ID,
		"event_id", event.ID,
		"tickets", len(tickets),
		"message_id", receipt.MessageID,
	)
	return nil
}

// mint creates the booking's tickets, or reuses the persisted ones on a
// re-run. Ticket numbers are stable once minted.
func (s *ticketIssuer) mint(ctx context.Context, booking *domain.Booking) ([]*domain.Ticket, error) {
	if err := s.setStatus(ctx, booking, domain.DeliveryStatusMinting); err != nil {
		return nil, err
	}

	existing, err := s.ticketRepo.ListByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if len(existing) > 0 {
		if len(existing) != booking.Quantity {
			return nil, fmt.Errorf("booking has %d tickets, expected %d", len(existing), booking.Quantity)
		}
		return existing, nil
	}

	now := time.Now()
	tickets := make([]*domain.Ticket, 0, booking.Quantity)
	for seq := 1; seq <= booking.Quantity; seq++ {
		tickets = append(tickets, &domain.Ticket{
			TicketNumber: s.credentials.Mint(booking.CreatedAt, seq),
			BookingID:    booking.ID,
			HolderName:   booking.BookerName,
			Seq:          seq,
			CreatedAt:    now,
		})
	}
	if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
		return nil, fmt.Errorf("persist tickets: %w", err)
	}
	return tickets, nil
}

// render encodes each ticket's QR and produces the booking's document. A
// failure for any single ticket aborts the whole render.
func (s *ticketIssuer) render(ctx context.Context, booking *domain.Booking, event *domain.Event, tickets []*domain.Ticket) (*domain.RenderedDocument, [][]byte, error) {
	if err := s.setStatus(ctx, booking, domain.DeliveryStatusRendering); err != nil {
		return nil, nil, err
	}

	qrs := make([][]byte, 0, len(tickets))
	view := &domain.BookingTicketsView{
		EventTitle:       event.Title,
		EventDescription: event.Description,
		EventDate:        event.Date.Format("Mon, 02 Jan 2006"),
		EventTime:        event.StartTime,
		Venue:            event.Venue,
		City:             event.City,
		BookerName:       booking.BookerName,
		PriceLabel:       fmt.Sprintf("%.2f", event.Price),
	}
	for _, t := range tickets {
		png, err := s.credentials.Encode(t.TicketNumber)
		if err != nil {
			return nil, nil, fmt.Errorf("encode QR for %s: %w", t.TicketNumber, err)
		}
		qrs = append(qrs, png)
		view.Tickets = append(view.Tickets, domain.TicketCardView{
			Number:     t.TicketNumber,
			HolderName: t.HolderName,
			QRPNG:      png,
		})
	}

	renderCtx, cancel := context.WithTimeout(ctx, s.cfg.StepTimeout)
	defer cancel()
	doc, err := s.renderer.Render(renderCtx, view)
	if err != nil {
		return nil, nil, fmt.Errorf("render document: %w", err)
	}
	return doc, qrs, nil
}

// dispatchEmail sends the ticket email, retrying transient transport failures
// with doubling backoff up to MaxEmailAttempts.
func (s *ticketIssuer) dispatchEmail(ctx context.Context, booking *domain.Booking, event *domain.Event, tickets []*domain.Ticket, qrs [][]byte, doc *domain.RenderedDocument) (*domain.DeliveryReceipt, error) {
	if err := s.setStatus(ctx, booking, domain.DeliveryStatusDispatching); err != nil {
		return nil, err
	}

	data := &domain.TicketEmailData{
		To:         booking.BookerEmail,
		BookerName: booking.BookerName,
		EventTitle: event.Title,
		EventDate:  event.Date.Format("Mon, 02 Jan 2006"),
		EventTime:  event.StartTime,
		EventVenue: event.Venue,
		EventCity:  event.City,
	}
	for i, t := range tickets {
		data.Tickets = append(data.Tickets, domain.TicketEmailItem{
			Number:     t.TicketNumber,
			HolderName: t.HolderName,
			QRPNG:      qrs[i],
		})
	}
	if doc != nil {
		data.Attachment = &domain.Attachment{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Data:        doc.Data,
		}
	}

	backoff := s.cfg.RetryBackoff
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxEmailAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, s.cfg.StepTimeout)
		receipt, err := s.emailService.SendTicketBundle(sendCtx, data)
		cancel()
		if err == nil {
			return receipt, nil
		}
		lastErr = err
		s.logger.Warn("ticket email attempt failed",
			"booking_id", booking.ID,
			"attempt", attempt,
			"err", err,
		)
		if attempt < s.cfg.MaxEmailAttempts {
			if err := s.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("email failed after %d attempts: %w", s.cfg.MaxEmailAttempts, lastErr)
}

func (s *ticketIssuer) dispatchMessage(ctx context.Context, booking *domain.Booking, event *domain.Event) {
	if booking.BookerPhone == "" {
		return
	}
	body := TicketSummaryText(event.Title, booking.Quantity, event.Date.Format("Mon, 02 Jan 2006"), event.StartTime, event.Venue)
	msgCtx, cancel := context.WithTimeout(ctx, s.cfg.StepTimeout)
	defer cancel()
	sid, err := s.messenger.Send(msgCtx, booking.BookerPhone, body)
	if err != nil {
		s.logger.Warn("whatsapp summary failed", "booking_id", booking.ID, "err", err)
		return
	}
	s.logger.Info("whatsapp summary sent", "booking_id", booking.ID, "sid", sid)
}

func (s *ticketIssuer) setStatus(ctx context.Context, booking *domain.Booking, status domain.DeliveryStatus) error {
	if err := s.bookingRepo.UpdateDeliveryStatus(ctx, booking.ID, status, nil); err != nil {
		return fmt.Errorf("persist %s state: %w", status, err)
	}
	booking.DeliveryStatus = status
	return nil
}

// fail records the terminal delivery_failed state and surfaces the booking and
// event identifiers with the underlying cause for operator-triggered resend.
func (s *ticketIssuer) fail(ctx context.Context, booking *domain.Booking, event *domain.Event, cause error) error {
	msg := cause.Error()
	if err := s.bookingRepo.UpdateDeliveryStatus(ctx, booking.ID, domain.DeliveryStatusFailed, &msg); err != nil {
		s.logger.Error("could not persist delivery_failed state", "booking_id", booking.ID, "err", err)
	}
	booking.DeliveryStatus = domain.DeliveryStatusFailed
	booking.DeliveryError = &msg
	s.logger.Error("ticket delivery failed",
		"booking_id", booking.ID,
		"event_id", event.ID,
		"err", cause,
	)
	return fmt.Errorf("issue tickets for booking %s (event %s): %w", booking.ID, event.ID, cause)
}

// TicketSummaryText formats the WhatsApp booking summary.
func TicketSummaryText(eventTitle string, ticketCount int, date, startTime, venue string) string {
	plural := "tickets"
	if ticketCount == 1 {
		plural = "ticket"
	}
	when := date
	if startTime != "" {
		when += " at " + startTime
	}
	return fmt.Sprintf(
		"Your booking for %s is confirmed: %d %s. %s, %s. Your tickets and QR codes were emailed to you.",
		eventTitle, ticketCount, plural, when, venue,
	)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
