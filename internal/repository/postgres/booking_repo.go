package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mojotix/internal/domain"
)

const bookingColumns = `id, event_id, booker_name, booker_email, booker_phone, quantity, total_amount, payment_ref, delivery_status, delivery_error, cancelled_at, created_at`

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (event_id, booker_name, booker_email, booker_phone, quantity, total_amount, payment_ref, delivery_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		booking.EventID, booking.BookerName, booking.BookerEmail, booking.BookerPhone,
		booking.Quantity, booking.TotalAmount, booking.PaymentRef,
		booking.DeliveryStatus, booking.CreatedAt,
	).Scan(&booking.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateDeliveryStatus(ctx context.Context, id string, status domain.DeliveryStatus, deliveryErr *string) error {
	query := `UPDATE bookings SET delivery_status = $2, delivery_error = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, status, deliveryErr)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE bookings SET cancelled_at = $2 WHERE id = $1 AND cancelled_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(
		&b.ID, &b.EventID, &b.BookerName, &b.BookerEmail, &b.BookerPhone,
		&b.Quantity, &b.TotalAmount, &b.PaymentRef,
		&b.DeliveryStatus, &b.DeliveryError, &b.CancelledAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}
