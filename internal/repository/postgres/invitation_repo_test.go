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

func TestInvitationRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	inv := &domain.Invitation{
		EventID:   "ev-1",
		Email:     "guest@example.com",
		InvitedBy: "user-1",
		Status:    domain.InvitationPending,
		InvitedAt: now,
	}
	mock.ExpectQuery(`INSERT INTO invitations`).
		WithArgs("ev-1", "guest@example.com", "user-1", domain.InvitationPending, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-uuid-1"))

	repo := NewInvitationRepository(db)
	require.NoError(t, repo.Create(ctx, inv))
	require.Equal(t, "inv-uuid-1", inv.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_GetEffective(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pending invitation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"id", "event_id", "email", "invited_by", "status", "invited_at", "responded_at"}).
			AddRow("inv-1", "ev-1", "guest@example.com", "user-1", "pending", now, nil)
		mock.ExpectQuery(`status IN \('pending', 'accepted'\)`).
			WithArgs("ev-1", "guest@example.com").
			WillReturnRows(rows)

		repo := NewInvitationRepository(db)
		got, err := repo.GetEffective(ctx, "ev-1", "guest@example.com")
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, got.Status)
		require.Nil(t, got.RespondedAt)
	})

	t.Run("no live invitation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`status IN`).
			WithArgs("ev-1", "stranger@example.com").
			WillReturnError(sql.ErrNoRows)

		repo := NewInvitationRepository(db)
		_, err = repo.GetEffective(ctx, "ev-1", "stranger@example.com")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvitationRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE invitations SET status = \$2, responded_at = \$3`).
			WithArgs("inv-1", domain.InvitationAccepted, at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewInvitationRepository(db)
		require.NoError(t, repo.UpdateStatus(ctx, "inv-1", domain.InvitationAccepted, at))
	})

	t.Run("unknown invitation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE invitations`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewInvitationRepository(db)
		require.ErrorIs(t, repo.UpdateStatus(ctx, "inv-none", domain.InvitationDeclined, at), domain.ErrNotFound)
	})
}

func TestInvitationRepository_ListAcceptedEventIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted events", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"event_id"}).AddRow("ev-1").AddRow("ev-3")
		mock.ExpectQuery(`SELECT event_id FROM invitations WHERE email = \$1 AND status = 'accepted'`).
			WithArgs("guest@example.com").
			WillReturnRows(rows)

		repo := NewInvitationRepository(db)
		ids, err := repo.ListAcceptedEventIDs(ctx, "guest@example.com")
		require.NoError(t, err)
		require.Equal(t, []string{"ev-1", "ev-3"}, ids)
	})

	t.Run("none accepted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT event_id FROM invitations`).
			WithArgs("guest@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"event_id"}))

		repo := NewInvitationRepository(db)
		ids, err := repo.ListAcceptedEventIDs(ctx, "guest@example.com")
		require.NoError(t, err)
		require.Empty(t, ids)
	})
}

func TestInvitationRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	responded := now.Add(time.Hour)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "event_id", "email", "invited_by", "status", "invited_at", "responded_at"}).
		AddRow("inv-2", "ev-1", "b@example.com", "user-1", "accepted", now, responded).
		AddRow("inv-1", "ev-1", "a@example.com", "user-1", "pending", now.Add(-time.Hour), nil)
	mock.ExpectQuery(`FROM invitations WHERE event_id = \$1 ORDER BY invited_at DESC`).
		WithArgs("ev-1").
		WillReturnRows(rows)

	repo := NewInvitationRepository(db)
	invs, err := repo.ListByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, invs, 2)
	require.Equal(t, domain.InvitationAccepted, invs[0].Status)
	require.NotNil(t, invs[0].RespondedAt)
	require.Nil(t, invs[1].RespondedAt)
}

func TestInvitationRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM invitations WHERE id = \$1`).
			WithArgs("inv-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewInvitationRepository(db)
		require.NoError(t, repo.Delete(ctx, "inv-1"))
	})

	t.Run("unknown invitation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM invitations`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewInvitationRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "inv-none"), domain.ErrNotFound)
	})
}
