package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"mojotix/internal/domain"
)

func eventRows(events ...*domain.Event) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "description", "date", "start_time", "venue", "city", "price", "is_private", "created_by", "is_active", "created_at", "updated_at"})
	for _, e := range events {
		rows.AddRow(e.ID, e.Title, e.Description, e.Date, e.StartTime, e.Venue, e.City, e.Price, e.IsPrivate, e.CreatedBy, e.IsActive, e.CreatedAt, e.UpdatedAt)
	}
	return rows
}

func sampleEvent(id string) *domain.Event {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	e := domain.NewEvent("Jazz Night", "Live jazz", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "19:30", "Blue Hall", "Lagos", 50, false, "user-1", now)
	e.ID = id
	return e
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		e := sampleEvent("")
		mock.ExpectQuery(`INSERT INTO events`).
			WithArgs(e.Title, e.Description, e.Date, e.StartTime, e.Venue, e.City, e.Price, e.IsPrivate, e.CreatedBy, e.IsActive, e.CreatedAt, e.UpdatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Create(ctx, e))
		require.Equal(t, "ev-uuid-1", e.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO events`).WillReturnError(sql.ErrConnDone)

		repo := NewEventRepository(db)
		require.Error(t, repo.Create(ctx, sampleEvent("")))
	})
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(eventRows(sampleEvent("ev-1")))

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "Jazz Night", got.Title)
		require.Equal(t, "19:30", got.StartTime)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM events`).
			WithArgs("ev-none").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "ev-none")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_ListActive(t *testing.T) {
	ctx := context.Background()

	t.Run("returns active events", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM events WHERE is_active = true ORDER BY date ASC`).
			WillReturnRows(eventRows(sampleEvent("ev-1"), sampleEvent("ev-2")))

		repo := NewEventRepository(db)
		events, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, events, 2)
	})

	t.Run("empty result is a non-nil slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM events WHERE is_active = true`).
			WillReturnRows(eventRows())

		repo := NewEventRepository(db)
		events, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.NotNil(t, events)
		require.Empty(t, events)
	})
}

func TestEventRepository_ListEndedWithUnattendedTickets(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("joins through bookings and tickets", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT DISTINCT e\.id, .+ JOIN bookings b ON b\.event_id = e\.id\s+JOIN tickets t ON t\.booking_id = b\.id\s+WHERE t\.attended = false`).
			WithArgs(cutoff).
			WillReturnRows(eventRows(sampleEvent("ev-1")))

		repo := NewEventRepository(db)
		events, err := repo.ListEndedWithUnattendedTickets(ctx, cutoff)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, "ev-1", events[0].ID)
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT DISTINCT`).WillReturnError(sql.ErrConnDone)

		repo := NewEventRepository(db)
		_, err = repo.ListEndedWithUnattendedTickets(ctx, cutoff)
		require.Error(t, err)
	})
}

func TestEventRepository_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events SET is_active = false`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Deactivate(ctx, "ev-1"))
	})

	t.Run("unknown event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Deactivate(ctx, "ev-none"), domain.ErrNotFound)
	})
}
