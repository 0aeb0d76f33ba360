package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/repository"
)

func pendingConfirmation(token string) *model.ScheduleConfirmation {
	logID := int64(20)
	return &model.ScheduleConfirmation{
		ID:            10,
		Token:         token,
		TransporterID: "T-1",
		EmployeeName:  "Jo Driver",
		ScheduleDate:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		YearWeek:      "2026-W10",
		MessageType:   "day_before",
		MessageLogID:  &logID,
		Status:        model.ConfirmationStatusPending,
		ExpiresAt:     time.Now().UTC().Add(24 * time.Hour),
	}
}

func TestConfirmationService_Get(t *testing.T) {
	confirmations := new(MockConfirmationRepository)
	schedules := new(MockScheduleRepository)
	logs := new(MockMessageLogRepository)
	ctx := context.Background()

	service := NewConfirmationService(confirmations, schedules, logs)

	confirmation := pendingConfirmation("tok-1")
	confirmations.On("FindByToken", ctx, "tok-1").Return(confirmation, nil)
	schedules.On("FindByTransporterAndDate", ctx, "T-1", confirmation.ScheduleDate).
		Return(&model.ScheduleEntry{
			ID:        5,
			WeekDay:   "Monday",
			Type:      "route",
			ShiftTime: "08:00-16:30",
			Van:       "V-12",
		}, nil)

	view, err := service.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Jo Driver", view.EmployeeName)
	assert.Equal(t, model.ConfirmationStatusPending, view.Status)
	assert.Equal(t, "Monday", view.WeekDay)
	assert.Equal(t, "route", view.Type)
	assert.Equal(t, "08:00-16:30", view.ShiftTime)
	assert.Equal(t, "V-12", view.Van)
}

func TestConfirmationService_Get_ScheduleRowGone(t *testing.T) {
	confirmations := new(MockConfirmationRepository)
	schedules := new(MockScheduleRepository)
	ctx := context.Background()

	service := NewConfirmationService(confirmations, schedules, new(MockMessageLogRepository))

	confirmation := pendingConfirmation("tok-1")
	confirmations.On("FindByToken", ctx, "tok-1").Return(confirmation, nil)
	schedules.On("FindByTransporterAndDate", ctx, "T-1", confirmation.ScheduleDate).
		Return(nil, repository.ErrScheduleNotFound)

	// The view still resolves from the confirmation row alone.
	view, err := service.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Jo Driver", view.EmployeeName)
	assert.Empty(t, view.WeekDay)
}

func TestConfirmationService_Get_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		confirmations := new(MockConfirmationRepository)
		service := NewConfirmationService(confirmations, new(MockScheduleRepository), new(MockMessageLogRepository))

		confirmations.On("FindByToken", ctx, "nope").Return(nil, repository.ErrConfirmationNotFound)

		_, err := service.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrConfirmationNotFound)
	})

	t.Run("expired link", func(t *testing.T) {
		confirmations := new(MockConfirmationRepository)
		service := NewConfirmationService(confirmations, new(MockScheduleRepository), new(MockMessageLogRepository))

		expired := pendingConfirmation("tok-old")
		expired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
		confirmations.On("FindByToken", ctx, "tok-old").Return(expired, nil)

		_, err := service.Get(ctx, "tok-old")
		assert.ErrorIs(t, err, ErrConfirmationExpired)
	})
}

func TestConfirmationService_Act_Confirm(t *testing.T) {
	confirmations := new(MockConfirmationRepository)
	schedules := new(MockScheduleRepository)
	logs := new(MockMessageLogRepository)
	ctx := context.Background()

	service := NewConfirmationService(confirmations, schedules, logs)

	confirmation := pendingConfirmation("tok-1")
	confirmations.On("FindByToken", ctx, "tok-1").Return(confirmation, nil)
	confirmations.On("SetConfirmed", ctx, int64(10), mock.AnythingOfType("time.Time")).Return(nil)

	schedules.On("FindByTransporterAndDate", ctx, "T-1", confirmation.ScheduleDate).
		Return(&model.ScheduleEntry{ID: 5, WeekDay: "Monday", Type: "route"}, nil)
	schedules.On("UpdateStatus", ctx, int64(5), model.EntryStatusConfirmed).Return(nil)
	schedules.On("AppendConfirmationRecord", ctx, mock.MatchedBy(func(r *model.ConfirmationRecord) bool {
		return r.ScheduleEntryID == 5 &&
			r.Channel == model.ChannelDayBefore &&
			r.Status == model.RecordStatusReceived &&
			r.Reply == model.ActionConfirm &&
			r.CreatedBy == "Jo Driver"
	})).Return(&model.ConfirmationRecord{ID: 1}, nil)

	logs.On("MarkReplied", ctx, int64(20), model.ActionConfirm, mock.AnythingOfType("time.Time"), "").Return(nil)

	view, err := service.Act(ctx, "tok-1", model.ActionConfirm, "")
	require.NoError(t, err)
	assert.NotNil(t, view)

	confirmations.AssertExpectations(t)
	schedules.AssertExpectations(t)
	logs.AssertExpectations(t)
}

func TestConfirmationService_Act_ChangeRequest(t *testing.T) {
	confirmations := new(MockConfirmationRepository)
	schedules := new(MockScheduleRepository)
	logs := new(MockMessageLogRepository)
	ctx := context.Background()

	service := NewConfirmationService(confirmations, schedules, logs)

	confirmation := pendingConfirmation("tok-1")
	confirmations.On("FindByToken", ctx, "tok-1").Return(confirmation, nil)
	confirmations.On("SetChangeRequested", ctx, int64(10), mock.AnythingOfType("time.Time"), "swap my Tuesday").Return(nil)

	schedules.On("FindByTransporterAndDate", ctx, "T-1", confirmation.ScheduleDate).
		Return(&model.ScheduleEntry{ID: 5}, nil)
	schedules.On("UpdateStatus", ctx, int64(5), model.EntryStatusChangeRequested).Return(nil)
	schedules.On("AppendConfirmationRecord", ctx, mock.MatchedBy(func(r *model.ConfirmationRecord) bool {
		return r.Reply == "change_request: swap my Tuesday"
	})).Return(&model.ConfirmationRecord{ID: 1}, nil)

	logs.On("MarkReplied", ctx, int64(20), "change_request: swap my Tuesday", mock.AnythingOfType("time.Time"), "").Return(nil)

	_, err := service.Act(ctx, "tok-1", model.ActionChangeRequest, "swap my Tuesday")
	require.NoError(t, err)

	confirmations.AssertExpectations(t)
	schedules.AssertExpectations(t)
}

func TestConfirmationService_Act_Resubmission_Overwrites(t *testing.T) {
	confirmations := new(MockConfirmationRepository)
	schedules := new(MockScheduleRepository)
	logs := new(MockMessageLogRepository)
	ctx := context.Background()

	service := NewConfirmationService(confirmations, schedules, logs)

	// Already confirmed once; a second submission flips it.
	confirmation := pendingConfirmation("tok-1")
	confirmation.Status = model.ConfirmationStatusConfirmed
	confirmations.On("FindByToken", ctx, "tok-1").Return(confirmation, nil)
	confirmations.On("SetChangeRequested", ctx, int64(10), mock.AnythingOfType("time.Time"), "").Return(nil)

	schedules.On("FindByTransporterAndDate", ctx, "T-1", confirmation.ScheduleDate).
		Return(&model.ScheduleEntry{ID: 5}, nil)
	schedules.On("UpdateStatus", ctx, int64(5), model.EntryStatusChangeRequested).Return(nil)
	schedules.On("AppendConfirmationRecord", ctx, mock.Anything).Return(&model.ConfirmationRecord{ID: 2}, nil)
	logs.On("MarkReplied", ctx, int64(20), model.ActionChangeRequest, mock.AnythingOfType("time.Time"), "").Return(nil)

	_, err := service.Act(ctx, "tok-1", model.ActionChangeRequest, "")
	require.NoError(t, err)
	confirmations.AssertExpectations(t)
}

func TestConfirmationService_Act_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid action", func(t *testing.T) {
		service := NewConfirmationService(new(MockConfirmationRepository), new(MockScheduleRepository), new(MockMessageLogRepository))

		_, err := service.Act(ctx, "tok-1", "maybe", "")
		assert.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("expired link rejects actions", func(t *testing.T) {
		confirmations := new(MockConfirmationRepository)
		service := NewConfirmationService(confirmations, new(MockScheduleRepository), new(MockMessageLogRepository))

		expired := pendingConfirmation("tok-old")
		expired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
		confirmations.On("FindByToken", ctx, "tok-old").Return(expired, nil)

		_, err := service.Act(ctx, "tok-old", model.ActionConfirm, "")
		assert.ErrorIs(t, err, ErrConfirmationExpired)
		confirmations.AssertNotCalled(t, "SetConfirmed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown token", func(t *testing.T) {
		confirmations := new(MockConfirmationRepository)
		service := NewConfirmationService(confirmations, new(MockScheduleRepository), new(MockMessageLogRepository))

		confirmations.On("FindByToken", ctx, "nope").Return(nil, repository.ErrConfirmationNotFound)

		_, err := service.Act(ctx, "nope", model.ActionConfirm, "")
		assert.ErrorIs(t, err, ErrConfirmationNotFound)
	})
}
