package domain

import "context"

// TicketCardView is one ticket as it appears on the rendered document.
type TicketCardView struct {
	Number     string
	HolderName string
	QRPNG      []byte
}

// BookingTicketsView is everything a renderer needs to produce the ticket
// document for one booking.
type BookingTicketsView struct {
	EventTitle       string
	EventDescription string
	EventDate        string
	EventTime        string
	Venue            string
	City             string
	BookerName       string
	PriceLabel       string
	Tickets          []TicketCardView
}

// RenderedDocument is a self-contained ticket document: viewing it requires no
// network fetches.
type RenderedDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TicketRenderer turns a booking's tickets into one durable document with one
// card per ticket. Implementations must fail the whole render if any single
// ticket cannot be represented; a partial document is never returned.
type TicketRenderer interface {
	Render(ctx context.Context, view *BookingTicketsView) (*RenderedDocument, error)
}
