package postgres

import (
	"context"
	"database/sql"
	"errors"

	"mojotix/internal/domain"
)

type seatRepository struct {
	DB *sql.DB
}

func NewSeatRepository(db *sql.DB) domain.SeatRepository {
	return &seatRepository{
		DB: db,
	}
}

func (r *seatRepository) CreateBatch(ctx context.Context, seats []*domain.Seat) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO seats (event_id, seat_number)
		VALUES ($1, $2)
		RETURNING id
	`
	for _, s := range seats {
		if err := tx.QueryRowContext(ctx, query, s.EventID, s.SeatNumber).Scan(&s.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *seatRepository) ListAvailable(ctx context.Context, eventID string) ([]*domain.Seat, error) {
	query := `
		SELECT id, event_id, seat_number, booking_id
		FROM seats
		WHERE event_id = $1 AND booking_id IS NULL
		ORDER BY seat_number ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []*domain.Seat
	for rows.Next() {
		s := &domain.Seat{}
		if err := rows.Scan(&s.ID, &s.EventID, &s.SeatNumber, &s.BookingID); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if seats == nil {
		seats = []*domain.Seat{}
	}
	return seats, nil
}

// Claim is a conditional update: the WHERE booking_id IS NULL predicate makes
// the claim atomic, so two concurrent bookings can never both take the seat.
func (r *seatRepository) Claim(ctx context.Context, eventID, seatNumber, bookingID string) error {
	query := `
		UPDATE seats
		SET booking_id = $3
		WHERE event_id = $1 AND seat_number = $2 AND booking_id IS NULL
	`
	res, err := r.DB.ExecContext(ctx, query, eventID, seatNumber, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Zero rows: either the seat does not exist or someone else holds it.
	var id string
	err = r.DB.QueryRowContext(ctx,
		`SELECT id FROM seats WHERE event_id = $1 AND seat_number = $2`,
		eventID, seatNumber,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrSeatUnavailable
}

func (r *seatRepository) ReleaseByBookingID(ctx context.Context, bookingID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE seats SET booking_id = NULL WHERE booking_id = $1`,
		bookingID,
	)
	return err
}
