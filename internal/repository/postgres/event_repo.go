package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mojotix/internal/domain"
)

const eventColumns = `id, title, description, date, start_time, venue, city, price, is_private, created_by, is_active, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, start_time, venue, city, price, is_private, created_by, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		event.Title, event.Description, event.Date, event.StartTime,
		event.Venue, event.City, event.Price, event.IsPrivate,
		event.CreatedBy, event.IsActive, event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	event, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) ListActive(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE is_active = true ORDER BY date ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ListEndedWithUnattendedTickets(ctx context.Context, onOrBefore time.Time) ([]*domain.Event, error) {
	query := `
		SELECT DISTINCT e.id, e.title, e.description, e.date, e.start_time, e.venue, e.city, e.price, e.is_private, e.created_by, e.is_active, e.created_at, e.updated_at
		FROM events e
		JOIN bookings b ON b.event_id = e.id
		JOIN tickets t ON t.booking_id = b.id
		WHERE t.attended = false AND e.is_active = true AND e.date <= $1
	`
	rows, err := r.DB.QueryContext(ctx, query, onOrBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE events SET is_active = false, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.StartTime,
		&e.Venue, &e.City, &e.Price, &e.IsPrivate,
		&e.CreatedBy, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
