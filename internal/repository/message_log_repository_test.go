package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
)

func newLog(to string, status model.MessageLogStatus, providerID *string) *model.MessageLog {
	now := time.Now().UTC()
	return &model.MessageLog{
		ProviderMessageID: providerID,
		FromNumber:        "+15550000001",
		ToNumber:          to,
		RecipientName:     "Test Driver",
		Type:              "day_before",
		Content:           "You work tomorrow",
		Status:            status,
		SentAt:            &now,
	}
}

func strPtr(s string) *string { return &s }

func TestMessageLogRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewMessageLogRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newLog("+15551234567", model.MessageLogStatusSent, strPtr("pm-1")))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotZero(t, created.CreatedAt)

	t.Run("provider message id is unique", func(t *testing.T) {
		_, err := repo.Create(ctx, newLog("+15551234568", model.MessageLogStatusSent, strPtr("pm-1")))
		assert.Error(t, err)
	})

	t.Run("failed rows carry no provider id", func(t *testing.T) {
		row := newLog("+15551234569", model.MessageLogStatusFailed, nil)
		row.ErrorMessage = "gateway returned 502"
		created, err := repo.Create(ctx, row)
		require.NoError(t, err)
		assert.Nil(t, created.ProviderMessageID)
	})
}

func TestMessageLogRepository_FindByProviderMessageID(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewMessageLogRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newLog("+15551230001", model.MessageLogStatusSent, strPtr("pm-42")))
	require.NoError(t, err)

	got, err := repo.FindByProviderMessageID(ctx, "pm-42")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.FindByProviderMessageID(ctx, "pm-missing")
	assert.ErrorIs(t, err, ErrMessageLogNotFound)
}

func TestMessageLogRepository_MarkDelivered(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewMessageLogRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newLog("+15551230002", model.MessageLogStatusSent, strPtr("pm-43")))
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, repo.MarkDelivered(ctx, created.ID, at, `{"event":"message.delivered"}`))

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MessageLogStatusDelivered, got.Status)
	require.NotNil(t, got.DeliveredAt)

	t.Run("status only moves forward", func(t *testing.T) {
		require.NoError(t, repo.MarkReplied(ctx, created.ID, "CONFIRM", time.Now().UTC(), "{}"))

		// a late delivery callback must not regress received_reply
		require.NoError(t, repo.MarkDelivered(ctx, created.ID, time.Now().UTC(), "{}"))

		got, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MessageLogStatusReceivedReply, got.Status)
	})
}

func TestMessageLogRepository_MarkReplied(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewMessageLogRepository(db)
	ctx := context.Background()

	t.Run("reply after sent", func(t *testing.T) {
		created, err := repo.Create(ctx, newLog("+15551230003", model.MessageLogStatusSent, strPtr("pm-44")))
		require.NoError(t, err)

		require.NoError(t, repo.MarkReplied(ctx, created.ID, "YES", time.Now().UTC(), "{}"))

		got, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MessageLogStatusReceivedReply, got.Status)
		assert.Equal(t, "YES", got.ReplyContent)
		assert.NotNil(t, got.RepliedAt)
	})

	t.Run("failed rows never transition", func(t *testing.T) {
		created, err := repo.Create(ctx, newLog("+15551230004", model.MessageLogStatusFailed, nil))
		require.NoError(t, err)

		require.NoError(t, repo.MarkReplied(ctx, created.ID, "YES", time.Now().UTC(), "{}"))

		got, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MessageLogStatusFailed, got.Status)
	})
}

func TestMessageLogRepository_FindLatestByToNumber(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewMessageLogRepository(db)
	ctx := context.Background()

	older, err := repo.Create(ctx, newLog("+15551230005", model.MessageLogStatusSent, strPtr("pm-45")))
	require.NoError(t, err)
	_ = older

	// force distinct created_at ordering
	time.Sleep(10 * time.Millisecond)

	newer, err := repo.Create(ctx, newLog("+15551230005", model.MessageLogStatusDelivered, strPtr("pm-46")))
	require.NoError(t, err)

	t.Run("exact match picks the newest", func(t *testing.T) {
		got, err := repo.FindLatestByToNumber(ctx, "+15551230005", []model.MessageLogStatus{
			model.MessageLogStatusSent, model.MessageLogStatusDelivered,
		})
		require.NoError(t, err)
		assert.Equal(t, newer.ID, got.ID)
	})

	t.Run("suffix match", func(t *testing.T) {
		got, err := repo.FindLatestByToNumber(ctx, "5551230005", []model.MessageLogStatus{
			model.MessageLogStatusSent, model.MessageLogStatusDelivered,
		})
		require.NoError(t, err)
		assert.Equal(t, newer.ID, got.ID)
	})

	t.Run("status filter", func(t *testing.T) {
		_, err := repo.FindLatestByToNumber(ctx, "+15551230005", []model.MessageLogStatus{
			model.MessageLogStatusFailed,
		})
		assert.ErrorIs(t, err, ErrMessageLogNotFound)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := repo.FindLatestByToNumber(ctx, "+19990000000", []model.MessageLogStatus{
			model.MessageLogStatusSent,
		})
		assert.ErrorIs(t, err, ErrMessageLogNotFound)
	})
}
