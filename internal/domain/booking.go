package domain

import (
	"context"
	"time"
)

// DeliveryStatus tracks a booking through the ticket issuance pipeline.
// The happy path is created -> minting -> rendering -> dispatching -> delivered.
// delivery_failed is reachable from any non-terminal state; tickets already
// minted for a failed booking remain valid and resendable.
type DeliveryStatus string

const (
	DeliveryStatusCreated     DeliveryStatus = "created"
	DeliveryStatusMinting     DeliveryStatus = "minting"
	DeliveryStatusRendering   DeliveryStatus = "rendering"
	DeliveryStatusDispatching DeliveryStatus = "dispatching"
	DeliveryStatusDelivered   DeliveryStatus = "delivered"
	DeliveryStatusFailed      DeliveryStatus = "delivery_failed"
)

// Booking represents one completed purchase of one or more tickets for an event.
// Bookings exist only after payment success and are immutable apart from
// delivery state and cancellation.
// swagger:model Booking
type Booking struct {
	ID             string         `json:"id"`
	EventID        string         `json:"event_id"`
	BookerName     string         `json:"booker_name"`
	BookerEmail    string         `json:"booker_email"`
	BookerPhone    string         `json:"booker_phone"`
	Quantity       int            `json:"quantity"`
	TotalAmount    float64        `json:"total_amount"`
	PaymentRef     string         `json:"payment_ref"`
	DeliveryStatus DeliveryStatus `json:"delivery_status"`
	DeliveryError  *string        `json:"delivery_error,omitempty"`
	CancelledAt    *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewBooking returns a new Booking in the created delivery state.
func NewBooking(eventID, bookerName, bookerEmail, bookerPhone string, quantity int, totalAmount float64, paymentRef string, now time.Time) *Booking {
	return &Booking{
		EventID:        eventID,
		BookerName:     bookerName,
		BookerEmail:    bookerEmail,
		BookerPhone:    bookerPhone,
		Quantity:       quantity,
		TotalAmount:    totalAmount,
		PaymentRef:     paymentRef,
		DeliveryStatus: DeliveryStatusCreated,
		CreatedAt:      now,
	}
}

// BookingRepository defines the interface for booking storage.
type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Booking, error)
	// UpdateDeliveryStatus persists the pipeline state (and optional error
	// detail) for a booking. Called before every side-effecting issuance step
	// so a crash leaves recoverable state.
	UpdateDeliveryStatus(ctx context.Context, id string, status DeliveryStatus, deliveryErr *string) error
	Cancel(ctx context.Context, id string, at time.Time) error
}

// BookingService defines booking operations exposed to the delivery layer.
type BookingService interface {
	// CreateBooking validates and persists a booking (claiming the requested
	// seats, if any) and runs ticket issuance for it. A delivery failure does
	// not fail the call: the booking lands in delivery_failed with its tickets
	// persisted, ready for resend.
	CreateBooking(ctx context.Context, booking *Booking, seatNumbers []string) error
	// ResendTickets re-renders and re-dispatches the stored tickets of a
	// booking for the event's creator or an admin. Ticket numbers are stable:
	// nothing is re-minted.
	ResendTickets(ctx context.Context, requester *Requester, bookingID string) (*Booking, error)
	// ListEventBookings returns an event's bookings, including delivery
	// status, for its organizer or an admin.
	ListEventBookings(ctx context.Context, requester *Requester, eventID string) ([]*Booking, error)
}
