package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
)

func newConfirmation(token string) *model.ScheduleConfirmation {
	return &model.ScheduleConfirmation{
		Token:         token,
		TransporterID: "T-100",
		EmployeeName:  "Jo Driver",
		ScheduleDate:  time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		YearWeek:      "2026-W09",
		MessageType:   "day_before",
		Status:        model.ConfirmationStatusPending,
		ExpiresAt:     time.Now().UTC().Add(7 * 24 * time.Hour),
	}
}

func TestConfirmationRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewConfirmationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newConfirmation("tok-1"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := repo.FindByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, model.ConfirmationStatusPending, got.Status)

	t.Run("unknown token", func(t *testing.T) {
		_, err := repo.FindByToken(ctx, "tok-nope")
		assert.ErrorIs(t, err, ErrConfirmationNotFound)
	})

	t.Run("token is unique", func(t *testing.T) {
		_, err := repo.Create(ctx, newConfirmation("tok-1"))
		assert.Error(t, err)
	})
}

func TestConfirmationRepository_LinkMessageLog(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewConfirmationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newConfirmation("tok-2"))
	require.NoError(t, err)

	require.NoError(t, repo.LinkMessageLog(ctx, created.ID, 55))

	got, err := repo.FindByToken(ctx, "tok-2")
	require.NoError(t, err)
	require.NotNil(t, got.MessageLogID)
	assert.Equal(t, int64(55), *got.MessageLogID)

	assert.ErrorIs(t, repo.LinkMessageLog(ctx, 9999, 55), ErrConfirmationNotFound)
}

func TestConfirmationRepository_Actions(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewConfirmationRepository(db)
	ctx := context.Background()

	t.Run("confirm", func(t *testing.T) {
		created, err := repo.Create(ctx, newConfirmation("tok-3"))
		require.NoError(t, err)

		at := time.Now().UTC()
		require.NoError(t, repo.SetConfirmed(ctx, created.ID, at))

		got, err := repo.FindByToken(ctx, "tok-3")
		require.NoError(t, err)
		assert.Equal(t, model.ConfirmationStatusConfirmed, got.Status)
		require.NotNil(t, got.ConfirmedAt)
	})

	t.Run("change request stores remarks", func(t *testing.T) {
		created, err := repo.Create(ctx, newConfirmation("tok-4"))
		require.NoError(t, err)

		require.NoError(t, repo.SetChangeRequested(ctx, created.ID, time.Now().UTC(), "can't make Tuesday"))

		got, err := repo.FindByToken(ctx, "tok-4")
		require.NoError(t, err)
		assert.Equal(t, model.ConfirmationStatusChangeRequested, got.Status)
		assert.Equal(t, "can't make Tuesday", got.ChangeRemarks)
		require.NotNil(t, got.ChangeRequestedAt)
	})
}
