package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/repository"
)

func TestWebhookService_Process_Delivered(t *testing.T) {
	logs := new(MockMessageLogRepository)
	schedules := new(MockScheduleRepository)
	employees := new(MockEmployeeRepository)
	ctx := context.Background()

	service := NewWebhookService(logs, schedules, employees, nil)

	payload := []byte(`{"event":"message.delivered","id":"evt-1","data":{"message_id":"pm-1","to":"+15550000001"}}`)

	pmID := "pm-1"
	logs.On("FindByProviderMessageID", ctx, "pm-1").
		Return(&model.MessageLog{ID: 5, ProviderMessageID: &pmID, ToNumber: "+15550000001", Type: "day_before"}, nil)
	logs.On("MarkDelivered", ctx, int64(5), mock.AnythingOfType("time.Time"), string(payload)).Return(nil)

	employees.On("FindByPhone", ctx, "+15550000001").
		Return(&model.Employee{ID: 1, TransporterID: "T-1"}, nil)
	schedules.On("FindLatestByTransporter", ctx, "T-1").
		Return(&model.ScheduleEntry{ID: 9}, nil)
	schedules.On("AppendConfirmationRecord", ctx, mock.MatchedBy(func(r *model.ConfirmationRecord) bool {
		return r.ScheduleEntryID == 9 &&
			r.Channel == model.ChannelDayBefore &&
			r.Status == model.RecordStatusDelivered &&
			r.CreatedBy == "webhook"
	})).Return(&model.ConfirmationRecord{ID: 1}, nil)

	event, err := service.Process(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, EventDelivered, event)

	logs.AssertExpectations(t)
	schedules.AssertExpectations(t)
}

func TestWebhookService_Process_Delivered_FlatEnvelope(t *testing.T) {
	logs := new(MockMessageLogRepository)
	ctx := context.Background()

	service := NewWebhookService(logs, new(MockScheduleRepository), new(MockEmployeeRepository), nil)

	// Older provider firmware flattens the data fields onto the top level.
	payload := []byte(`{"type":"message.delivered","message_id":"pm-2","to":"+15550000002"}`)

	logs.On("FindByProviderMessageID", ctx, "pm-2").
		Return(&model.MessageLog{ID: 6, ToNumber: "+15550000002", Type: "adhoc"}, nil)
	logs.On("MarkDelivered", ctx, int64(6), mock.AnythingOfType("time.Time"), string(payload)).Return(nil)

	event, err := service.Process(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, EventDelivered, event)
	logs.AssertExpectations(t)
}

func TestWebhookService_Process_Delivered_UnknownMessage_CreatesStub(t *testing.T) {
	logs := new(MockMessageLogRepository)
	ctx := context.Background()

	service := NewWebhookService(logs, new(MockScheduleRepository), new(MockEmployeeRepository), nil)

	payload := []byte(`{"event":"message.delivered","data":{"message_id":"pm-ghost","to":"+15550000003"}}`)

	logs.On("FindByProviderMessageID", ctx, "pm-ghost").
		Return(nil, repository.ErrMessageLogNotFound)
	logs.On("Create", ctx, mock.MatchedBy(func(l *model.MessageLog) bool {
		return l.Status == model.MessageLogStatusDelivered &&
			l.ProviderMessageID != nil && *l.ProviderMessageID == "pm-ghost" &&
			l.ToNumber == "+15550000003"
	})).Return(&model.MessageLog{ID: 7}, nil)

	_, err := service.Process(ctx, payload)
	require.NoError(t, err)
	logs.AssertExpectations(t)
}

func TestWebhookService_Process_Received(t *testing.T) {
	logs := new(MockMessageLogRepository)
	schedules := new(MockScheduleRepository)
	employees := new(MockEmployeeRepository)
	ctx := context.Background()

	service := NewWebhookService(logs, schedules, employees, nil)

	payload := []byte(`{"event":"message.received","data":{"from":"+15550000001","content":" CONFIRM "}}`)

	pmID := "pm-1"
	logs.On("FindLatestByToNumber", ctx, "+15550000001", []model.MessageLogStatus{
		model.MessageLogStatusSent, model.MessageLogStatusDelivered,
	}).Return(&model.MessageLog{ID: 5, ProviderMessageID: &pmID, ToNumber: "+15550000001", Type: "day_of"}, nil)
	logs.On("MarkReplied", ctx, int64(5), "CONFIRM", mock.AnythingOfType("time.Time"), string(payload)).Return(nil)

	employees.On("FindByPhone", ctx, "+15550000001").
		Return(&model.Employee{ID: 1, TransporterID: "T-1"}, nil)
	schedules.On("FindLatestByTransporter", ctx, "T-1").
		Return(&model.ScheduleEntry{ID: 9}, nil)
	schedules.On("AppendConfirmationRecord", ctx, mock.MatchedBy(func(r *model.ConfirmationRecord) bool {
		return r.Channel == model.ChannelDayOf &&
			r.Status == model.RecordStatusReceived &&
			r.Reply == "CONFIRM"
	})).Return(&model.ConfirmationRecord{ID: 1}, nil)

	event, err := service.Process(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, EventReceived, event)
	logs.AssertExpectations(t)
}

func TestWebhookService_Process_Received_NoOpenSend_CreatesStub(t *testing.T) {
	logs := new(MockMessageLogRepository)
	ctx := context.Background()

	service := NewWebhookService(logs, new(MockScheduleRepository), new(MockEmployeeRepository), nil)

	payload := []byte(`{"event":"message.received","data":{"from":"+15559999999","content":"who is this"}}`)

	logs.On("FindLatestByToNumber", ctx, "+15559999999", mock.Anything).
		Return(nil, repository.ErrMessageLogNotFound)
	logs.On("Create", ctx, mock.MatchedBy(func(l *model.MessageLog) bool {
		return l.Status == model.MessageLogStatusReceivedReply &&
			l.ReplyContent == "who is this"
	})).Return(&model.MessageLog{ID: 8}, nil)

	_, err := service.Process(ctx, payload)
	require.NoError(t, err)
	logs.AssertExpectations(t)
}

func TestWebhookService_Process_Dedup(t *testing.T) {
	logs := new(MockMessageLogRepository)
	cache := new(MockRedisAdapter)
	ctx := context.Background()

	service := NewWebhookService(logs, new(MockScheduleRepository), new(MockEmployeeRepository), cache)

	payload := []byte(`{"event":"message.delivered","id":"evt-9","data":{"message_id":"pm-1"}}`)

	cache.On("SetNX", webhookDedupPrefix+"evt-9", []byte(EventDelivered), webhookDedupTTL).
		Return(false, nil)

	event, err := service.Process(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, EventDelivered, event)
	logs.AssertNotCalled(t, "FindByProviderMessageID", mock.Anything, mock.Anything)
}

func TestWebhookService_Process_Rejections(t *testing.T) {
	service := NewWebhookService(new(MockMessageLogRepository), new(MockScheduleRepository), new(MockEmployeeRepository), nil)
	ctx := context.Background()

	t.Run("unknown event", func(t *testing.T) {
		_, err := service.Process(ctx, []byte(`{"event":"message.queued","data":{}}`))
		assert.ErrorIs(t, err, ErrUnknownEvent)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := service.Process(ctx, []byte(`not-json`))
		assert.ErrorIs(t, err, ErrBadEnvelope)
	})

	t.Run("delivered without message id", func(t *testing.T) {
		_, err := service.Process(ctx, []byte(`{"event":"message.delivered","data":{}}`))
		assert.ErrorIs(t, err, ErrIncompleteEvent)
		assert.NotErrorIs(t, err, ErrBadEnvelope)
	})

	t.Run("received without sender", func(t *testing.T) {
		_, err := service.Process(ctx, []byte(`{"event":"message.received","data":{}}`))
		assert.ErrorIs(t, err, ErrIncompleteEvent)
		assert.NotErrorIs(t, err, ErrBadEnvelope)
	})
}
