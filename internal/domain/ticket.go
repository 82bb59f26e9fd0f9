package domain

import (
	"context"
	"time"
)

// Ticket is one redeemable admission credential tied to a booking and a
// holder. Tickets are created atomically with issuance and never deleted;
// attended never reverts once set.
// swagger:model Ticket
type Ticket struct {
	ID           string     `json:"id"`
	TicketNumber string     `json:"ticket_number"`
	BookingID    string     `json:"booking_id"`
	HolderName   string     `json:"holder_name"`
	Seq          int        `json:"seq"`
	Attended     bool       `json:"attended"`
	AttendedAt   *time.Time `json:"attended_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TicketRepository defines the interface for ticket storage.
type TicketRepository interface {
	// CreateBatch inserts all tickets of a booking in one transaction: a
	// booking is never partially ticketed.
	CreateBatch(ctx context.Context, tickets []*Ticket) error
	// ListByBookingID returns a booking's tickets ordered by minting sequence.
	ListByBookingID(ctx context.Context, bookingID string) ([]*Ticket, error)
	// MarkAttendedByEventID sets attended on every unattended ticket of the
	// event's bookings and returns how many rows changed. The attended=false
	// filter makes repeated runs no-ops.
	MarkAttendedByEventID(ctx context.Context, eventID string, at time.Time) (int64, error)
}

// TicketIssuer runs the issuance pipeline for a confirmed booking: mint
// credentials, render the ticket document, dispatch email and the best-effort
// WhatsApp summary. Issue is resumable: tickets already minted and persisted
// are reused, never re-minted.
type TicketIssuer interface {
	Issue(ctx context.Context, booking *Booking, event *Event) error
}
