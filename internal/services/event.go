package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mojotix/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	seatRepo       domain.SeatRepository
	gate           *AccessGate
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, seatRepo domain.SeatRepository, gate *AccessGate, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		seatRepo:       seatRepo,
		gate:           gate,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, seatNumbers []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.Title == "" {
		return fmt.Errorf("event title is required")
	}
	if event.Date.IsZero() {
		return fmt.Errorf("event date is required")
	}
	if event.CreatedBy == "" {
		return fmt.Errorf("event creator is required")
	}
	now := time.Now()
	event.IsActive = true
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return err
	}
	if len(seatNumbers) == 0 {
		return nil
	}
	seats := make([]*domain.Seat, 0, len(seatNumbers))
	for _, n := range seatNumbers {
		seats = append(seats, &domain.Seat{EventID: event.ID, SeatNumber: n})
	}
	if err := s.seatRepo.CreateBatch(ctx, seats); err != nil {
		return fmt.Errorf("create seats for event %s: %w", event.ID, err)
	}
	return nil
}

// ListAvailableSeats lists the event's unclaimed seats. Visibility follows
// GetVisibleEvent, so seats of a hidden private event read as ErrNotFound.
func (s *eventService) ListAvailableSeats(ctx context.Context, requester *domain.Requester, eventID string) ([]*domain.Seat, error) {
	if _, err := s.GetVisibleEvent(ctx, requester, eventID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	seats, err := s.seatRepo.ListAvailable(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	return seats, nil
}

// GetVisibleEvent returns the event only if the requester may view it. A
// private event the requester may not see comes back as ErrNotFound, the same
// as a nonexistent one.
func (s *eventService) GetVisibleEvent(ctx context.Context, requester *domain.Requester, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsActive && (requester == nil || (requester.ID != event.CreatedBy && !requester.IsAdmin())) {
		return nil, domain.ErrNotFound
	}
	ok, err := s.gate.CanView(ctx, requester, event)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *eventService) ListVisibleEvents(ctx context.Context, requester *domain.Requester) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.gate.FilterVisible(ctx, requester, events)
}
