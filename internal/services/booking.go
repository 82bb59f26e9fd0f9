package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"mojotix/internal/domain"
)

var bookerEmailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type bookingService struct {
	bookingRepo    domain.BookingRepository
	eventRepo      domain.EventRepository
	seatRepo       domain.SeatRepository
	issuer         domain.TicketIssuer
	gate           *AccessGate
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewBookingService(
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	seatRepo domain.SeatRepository,
	issuer domain.TicketIssuer,
	gate *AccessGate,
	logger *slog.Logger,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		seatRepo:       seatRepo,
		issuer:         issuer,
		gate:           gate,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// CreateBooking persists a confirmed booking, claims any requested seats, and
// runs ticket issuance. Issuance failure does not fail the call: the booking
// ends in delivery_failed with its tickets persisted, and the operator can
// resend. Seat claim failure does fail the call, with every partial claim
// released and the booking cancelled.
func (s *bookingService) CreateBooking(ctx context.Context, booking *domain.Booking, seatNumbers []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateBooking(booking, seatNumbers); err != nil {
		return err
	}

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !event.IsActive {
		return domain.ErrNotFound
	}

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	if booking.TotalAmount == 0 {
		booking.TotalAmount = event.Price * float64(booking.Quantity)
	}
	booking.DeliveryStatus = domain.DeliveryStatusCreated
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	for _, seat := range seatNumbers {
		if err := s.seatRepo.Claim(ctx, event.ID, seat, booking.ID); err != nil {
			// Back out: release whatever this booking already claimed and
			// cancel the booking so the seats stay consistent.
			if relErr := s.seatRepo.ReleaseByBookingID(ctx, booking.ID); relErr != nil {
				s.logger.Error("could not release seats after failed claim", "booking_id", booking.ID, "err", relErr)
			}
			if cancelErr := s.bookingRepo.Cancel(ctx, booking.ID, time.Now()); cancelErr != nil {
				s.logger.Error("could not cancel booking after failed claim", "booking_id", booking.ID, "err", cancelErr)
			}
			if errors.Is(err, domain.ErrSeatUnavailable) || errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("seat %s: %w", seat, domain.ErrSeatUnavailable)
			}
			return fmt.Errorf("claim seat %s: %w", seat, err)
		}
	}

	if err := s.issuer.Issue(ctx, booking, event); err != nil {
		// The booking is in delivery_failed with the cause recorded; the
		// tickets (if minted) persist for resend.
		s.logger.Error("issuance failed for new booking", "booking_id", booking.ID, "err", err)
	}
	return nil
}

// ResendTickets re-runs issuance for a booking, reusing its stored tickets.
// Nothing is re-minted and the booker is not charged again. Only the event's
// creator or an admin may trigger it; for anyone else the booking does not
// exist.
func (s *bookingService) ResendTickets(ctx context.Context, requester *domain.Requester, bookingID string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking.CancelledAt != nil {
		return nil, fmt.Errorf("booking %s is cancelled", bookingID)
	}
	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if requester == nil || (requester.ID != event.CreatedBy && !requester.IsAdmin()) {
		return nil, domain.ErrNotFound
	}

	if err := s.issuer.Issue(ctx, booking, event); err != nil {
		s.logger.Error("resend failed", "booking_id", booking.ID, "err", err)
	}
	return booking, nil
}

// ListEventBookings returns an event's bookings, including per-booking
// delivery status, to its creator or an admin. For anyone else the event is
// indistinguishable from a missing one.
func (s *bookingService) ListEventBookings(ctx context.Context, requester *domain.Requester, eventID string) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ok, err := s.gate.CanView(ctx, requester, event); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrNotFound
	}
	if requester == nil || (requester.ID != event.CreatedBy && !requester.IsAdmin()) {
		return nil, domain.ErrForbidden
	}

	bookings, err := s.bookingRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func validateBooking(booking *domain.Booking, seatNumbers []string) error {
	if booking == nil {
		return fmt.Errorf("booking is nil")
	}
	if booking.EventID == "" {
		return fmt.Errorf("event is required")
	}
	if booking.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if booking.BookerName == "" {
		return fmt.Errorf("booker name is required")
	}
	if !bookerEmailRegex.MatchString(booking.BookerEmail) {
		return fmt.Errorf("booker email is invalid")
	}
	if booking.PaymentRef == "" {
		return fmt.Errorf("payment reference is required")
	}
	if len(seatNumbers) > 0 && len(seatNumbers) != booking.Quantity {
		return fmt.Errorf("selected %d seats for %d tickets", len(seatNumbers), booking.Quantity)
	}
	return nil
}
