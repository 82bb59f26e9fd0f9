package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mojotix/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

// CreateBatch inserts all tickets in one transaction so a booking is never
// partially ticketed.
func (r *ticketRepository) CreateBatch(ctx context.Context, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return fmt.Errorf("no tickets to insert")
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tickets (ticket_number, booking_id, holder_name, seq, attended, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
		RETURNING id
	`
	for _, t := range tickets {
		if err := tx.QueryRowContext(ctx, query,
			t.TicketNumber, t.BookingID, t.HolderName, t.Seq, t.CreatedAt,
		).Scan(&t.ID); err != nil {
			return fmt.Errorf("insert ticket %s: %w", t.TicketNumber, err)
		}
	}
	return tx.Commit()
}

func (r *ticketRepository) ListByBookingID(ctx context.Context, bookingID string) ([]*domain.Ticket, error) {
	query := `
		SELECT id, ticket_number, booking_id, holder_name, seq, attended, attended_at, created_at
		FROM tickets
		WHERE booking_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t := &domain.Ticket{}
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.BookingID, &t.HolderName, &t.Seq, &t.Attended, &t.AttendedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []*domain.Ticket{}
	}
	return tickets, nil
}

// MarkAttendedByEventID flips every unattended ticket of the event in a single
// statement. The attended = false predicate keeps re-runs from touching rows
// a previous run already marked, so attended_at is never overwritten.
func (r *ticketRepository) MarkAttendedByEventID(ctx context.Context, eventID string, at time.Time) (int64, error) {
	query := `
		UPDATE tickets t
		SET attended = true, attended_at = $2
		FROM bookings b
		WHERE t.booking_id = b.id AND b.event_id = $1 AND t.attended = false
	`
	res, err := r.DB.ExecContext(ctx, query, eventID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
