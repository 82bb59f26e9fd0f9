package domain

import "time"

// CredentialGenerator mints ticket numbers and their scannable encodings.
// Both operations are pure: no I/O, no shared counters. Ticket numbers embed
// the booking's timestamp plus a per-booking sequence index, so concurrent
// bookings never need coordination, and the sequence keeps per-booking order
// stable.
type CredentialGenerator interface {
	// Mint returns an opaque alphanumeric ticket number for the seq-th ticket
	// (1-based) of a booking confirmed at bookedAt.
	Mint(bookedAt time.Time, seq int) string
	// Encode returns a PNG 2D barcode whose decoded payload is exactly the
	// ticket number. Same input, same logical payload.
	Encode(ticketNumber string) ([]byte, error)
}
