package services

import (
	"context"
	"log/slog"
	"time"

	"mojotix/internal/domain"
)

type attendanceReconciler struct {
	eventRepo  domain.EventRepository
	ticketRepo domain.TicketRepository
	grace      time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewAttendanceReconciler returns the batch process that marks every
// unattended ticket of an ended event as attended. An event counts as ended
// once its start instant plus the grace duration has passed.
func NewAttendanceReconciler(
	eventRepo domain.EventRepository,
	ticketRepo domain.TicketRepository,
	grace time.Duration,
	logger *slog.Logger,
) domain.AttendanceReconciler {
	return &attendanceReconciler{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
		grace:      grace,
		logger:     logger,
		now:        time.Now,
	}
}

// Run reconciles attendance for every ended event. Idempotent: the repository
// only touches attended=false tickets, so a second run over the same events
// changes nothing. One event's failure is reported in its result and does not
// stop the others; the next scheduled run retries it.
func (s *attendanceReconciler) Run(ctx context.Context) (*domain.ReconcileRunResult, error) {
	now := s.now()
	events, err := s.eventRepo.ListEndedWithUnattendedTickets(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &domain.ReconcileRunResult{Results: []domain.ReconcileEventResult{}}
	for _, e := range events {
		// Dated on or before today, but still inside the grace window.
		if e.EndsBy(s.grace).After(now) {
			continue
		}
		updated, err := s.ticketRepo.MarkAttendedByEventID(ctx, e.ID, now)
		if err != nil {
			s.logger.Error("attendance reconciliation failed for event", "event_id", e.ID, "err", err)
			result.Results = append(result.Results, domain.ReconcileEventResult{
				EventID: e.ID,
				Success: false,
				Error:   err.Error(),
			})
			continue
		}
		result.TotalTicketsUpdated += updated
		result.Results = append(result.Results, domain.ReconcileEventResult{
			EventID:        e.ID,
			Success:        true,
			TicketsUpdated: updated,
		})
	}

	if result.TotalTicketsUpdated > 0 {
		s.logger.Info("attendance reconciled",
			"events", len(result.Results),
			"tickets_updated", result.TotalTicketsUpdated,
		)
	}
	return result, nil
}
