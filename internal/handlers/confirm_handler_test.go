package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/services"
)

type MockConfirmationService struct {
	mock.Mock
}

func (m *MockConfirmationService) Get(ctx context.Context, token string) (*model.ConfirmationView, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfirmationView), args.Error(1)
}

func (m *MockConfirmationService) Act(ctx context.Context, token, action, remarks string) (*model.ConfirmationView, error) {
	args := m.Called(ctx, token, action, remarks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfirmationView), args.Error(1)
}

func confirmContext(method, token string, body []byte) *fasthttp.RequestCtx {
	ctx := setupTestContext(method, "/public/confirm/"+token, body)
	ctx.SetUserValue("token", token)
	return ctx
}

func TestConfirmHandler_GetConfirmation(t *testing.T) {
	t.Run("resolves the view", func(t *testing.T) {
		svc := new(MockConfirmationService)
		handler := NewConfirmHandler(svc)

		svc.On("Get", mock.Anything, "tok-1").Return(&model.ConfirmationView{
			EmployeeName: "Jo Driver",
			Status:       model.ConfirmationStatusPending,
			ScheduleDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			WeekDay:      "Monday",
		}, nil)

		ctx := confirmContext("GET", "tok-1", nil)
		handler.GetConfirmation(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

		var view model.ConfirmationView
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &view))
		assert.Equal(t, "Jo Driver", view.EmployeeName)
	})

	t.Run("unknown token answers 404", func(t *testing.T) {
		svc := new(MockConfirmationService)
		handler := NewConfirmHandler(svc)

		svc.On("Get", mock.Anything, "nope").Return(nil, services.ErrConfirmationNotFound)

		ctx := confirmContext("GET", "nope", nil)
		handler.GetConfirmation(ctx)

		assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	})

	t.Run("expired link answers 410", func(t *testing.T) {
		svc := new(MockConfirmationService)
		handler := NewConfirmHandler(svc)

		svc.On("Get", mock.Anything, "tok-old").Return(nil, services.ErrConfirmationExpired)

		ctx := confirmContext("GET", "tok-old", nil)
		handler.GetConfirmation(ctx)

		assert.Equal(t, fasthttp.StatusGone, ctx.Response.StatusCode())
	})
}

func TestConfirmHandler_SubmitConfirmation(t *testing.T) {
	t.Run("confirm action", func(t *testing.T) {
		svc := new(MockConfirmationService)
		handler := NewConfirmHandler(svc)

		svc.On("Act", mock.Anything, "tok-1", "confirm", "").Return(&model.ConfirmationView{
			Status: model.ConfirmationStatusConfirmed,
		}, nil)

		ctx := confirmContext("POST", "tok-1", []byte(`{"action":"confirm"}`))
		handler.SubmitConfirmation(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	})

	t.Run("change request with remarks", func(t *testing.T) {
		svc := new(MockConfirmationService)
		handler := NewConfirmHandler(svc)

		svc.On("Act", mock.Anything, "tok-1", "change_request", "swap Tuesday").Return(&model.ConfirmationView{
			Status: model.ConfirmationStatusChangeRequested,
		}, nil)

		ctx := confirmContext("POST", "tok-1", []byte(`{"action":"change_request","remarks":"swap Tuesday"}`))
		handler.SubmitConfirmation(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	})

	t.Run("invalid action answers 400", func(t *testing.T) {
		svc := new(MockConfirmationService)
		handler := NewConfirmHandler(svc)

		svc.On("Act", mock.Anything, "tok-1", "maybe", "").Return(nil, services.ErrInvalidAction)

		ctx := confirmContext("POST", "tok-1", []byte(`{"action":"maybe"}`))
		handler.SubmitConfirmation(ctx)

		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("expired link rejects submissions with 410", func(t *testing.T) {
		svc := new(MockConfirmationService)
		handler := NewConfirmHandler(svc)

		svc.On("Act", mock.Anything, "tok-old", "confirm", "").Return(nil, services.ErrConfirmationExpired)

		ctx := confirmContext("POST", "tok-old", []byte(`{"action":"confirm"}`))
		handler.SubmitConfirmation(ctx)

		assert.Equal(t, fasthttp.StatusGone, ctx.Response.StatusCode())
	})
}
