package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/services"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/xhttp"
)

type ConfirmationService interface {
	Get(ctx context.Context, token string) (*model.ConfirmationView, error)
	Act(ctx context.Context, token, action, remarks string) (*model.ConfirmationView, error)
}

type ConfirmHandler struct {
	svc ConfirmationService
}

// RegisterConfirmRoutes wires the token-gated surface, mounted under the
// public group rather than the versioned API. No session auth here, the
// token is the credential.
func RegisterConfirmRoutes(e *router.Group, h *ConfirmHandler) {
	e.GET("/confirm/{token}", h.GetConfirmation)
	e.POST("/confirm/{token}", h.SubmitConfirmation)
}

func NewConfirmHandler(svc ConfirmationService) *ConfirmHandler {
	return &ConfirmHandler{
		svc: svc,
	}
}

type confirmActionRequest struct {
	Action  string `json:"action"`
	Remarks string `json:"remarks,omitempty"`
}

func (h *ConfirmHandler) GetConfirmation(ctx *xhttp.RequestCtx) {
	view, err := h.svc.Get(ctx, param(ctx, "token"))
	if err != nil {
		writeConfirmationError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, view)
}

func (h *ConfirmHandler) SubmitConfirmation(ctx *xhttp.RequestCtx) {
	var req confirmActionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	view, err := h.svc.Act(ctx, param(ctx, "token"), req.Action, req.Remarks)
	if err != nil {
		writeConfirmationError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, view)
}

// writeConfirmationError keeps the public surface deliberately terse: an
// invalid token and a missing one look the same to the caller.
func writeConfirmationError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrConfirmationNotFound):
		writeError(ctx, xhttp.StatusNotFound, "not found")
	case errors.Is(err, services.ErrConfirmationExpired):
		writeError(ctx, xhttp.StatusGone, "link expired")
	case errors.Is(err, services.ErrInvalidAction):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	default:
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
	}
}
