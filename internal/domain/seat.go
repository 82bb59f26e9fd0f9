package domain

import "context"

// Seat is a seat number scoped to an event. A seat with a non-nil BookingID is
// unavailable for new selection.
// swagger:model Seat
type Seat struct {
	ID         string  `json:"id"`
	EventID    string  `json:"event_id"`
	SeatNumber string  `json:"seat_number"`
	BookingID  *string `json:"booking_id,omitempty"`
}

// SeatRepository defines storage operations for seats.
type SeatRepository interface {
	CreateBatch(ctx context.Context, seats []*Seat) error
	ListAvailable(ctx context.Context, eventID string) ([]*Seat, error)
	// Claim links the seat to the booking only if it is still unclaimed, as a
	// single conditional update. Returns ErrSeatUnavailable when another
	// booking holds it; two concurrent claims can never both succeed.
	Claim(ctx context.Context, eventID, seatNumber, bookingID string) error
	// ReleaseByBookingID unlinks every seat held by the booking. Used to back
	// out partial claims when a multi-seat selection fails.
	ReleaseByBookingID(ctx context.Context, bookingID string) error
}
