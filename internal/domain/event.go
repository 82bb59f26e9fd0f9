package domain

import (
	"context"
	"time"
)

// Event represents a bookable event. Private events are visible only to their
// creator, accepted invitees, and admins.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"` // "15:04", empty when unknown
	Venue       string    `json:"venue"`
	City        string    `json:"city"`
	Price       float64   `json:"price"`
	IsPrivate   bool      `json:"is_private"`
	CreatedBy   string    `json:"created_by"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, description string, date time.Time, startTime, venue, city string, price float64, isPrivate bool, createdBy string, now time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		StartTime:   startTime,
		Venue:       venue,
		City:        city,
		Price:       price,
		IsPrivate:   isPrivate,
		CreatedBy:   createdBy,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// StartInstant returns the moment the event begins: Date at StartTime, or end
// of day when no start time is recorded.
func (e *Event) StartInstant() time.Time {
	y, m, d := e.Date.Date()
	loc := e.Date.Location()
	if t, err := time.Parse("15:04", e.StartTime); err == nil {
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
	}
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}

// EndsBy returns the instant the event is considered over, given a grace
// duration representing a typical event length.
func (e *Event) EndsBy(grace time.Duration) time.Time {
	return e.StartInstant().Add(grace)
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListActive(ctx context.Context) ([]*Event, error)
	// ListEndedWithUnattendedTickets returns active events dated on or before
	// the given day that still have at least one unattended ticket.
	ListEndedWithUnattendedTickets(ctx context.Context, onOrBefore time.Time) ([]*Event, error)
	Deactivate(ctx context.Context, id string) error
}

// EventService defines event operations exposed to the delivery layer. Reads
// are access-gated: a private event behaves as nonexistent for requesters who
// may not view it.
type EventService interface {
	// CreateEvent persists the event and, when seatNumbers is non-empty, its
	// selectable seats.
	CreateEvent(ctx context.Context, event *Event, seatNumbers []string) error
	GetVisibleEvent(ctx context.Context, requester *Requester, eventID string) (*Event, error)
	ListVisibleEvents(ctx context.Context, requester *Requester) ([]*Event, error)
	// ListAvailableSeats returns the event's unclaimed seats, subject to the
	// same visibility gating as GetVisibleEvent.
	ListAvailableSeats(ctx context.Context, requester *Requester, eventID string) ([]*Seat, error)
}
