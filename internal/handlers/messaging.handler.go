package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/auth"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/xhttp"
)

type MessagingService interface {
	Send(ctx context.Context, session *auth.Session, req model.SendRequest) (*model.SendSummary, error)
}

type MessagingHandler struct {
	svc MessagingService
}

func RegisterMessagingRoutes(e *router.Group, secret string, h *MessagingHandler) {
	e.POST("/messaging/send", auth.Required(secret, h.Send))
}

func NewMessagingHandler(svc MessagingService) *MessagingHandler {
	return &MessagingHandler{
		svc: svc,
	}
}

type sendRecipient struct {
	Phone         string `json:"phone"`
	Name          string `json:"name,omitempty"`
	Message       string `json:"message,omitempty"`
	TransporterID string `json:"transporter_id,omitempty"`
	ScheduleDate  string `json:"schedule_date,omitempty"`
	YearWeek      string `json:"year_week,omitempty"`
}

type sendRequest struct {
	Recipients  []sendRecipient `json:"recipients"`
	Message     string          `json:"message,omitempty"`
	From        string          `json:"from,omitempty"`
	MessageType string          `json:"message_type,omitempty"`
}

func (h *MessagingHandler) Send(ctx *xhttp.RequestCtx) {
	var req sendRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	p := model.SendRequest{
		Message:     req.Message,
		From:        req.From,
		MessageType: req.MessageType,
	}
	for _, r := range req.Recipients {
		recipient := model.Recipient{
			Phone:         r.Phone,
			Name:          r.Name,
			Message:       r.Message,
			TransporterID: r.TransporterID,
			YearWeek:      r.YearWeek,
		}
		if r.ScheduleDate != "" {
			d, err := parseDate(r.ScheduleDate)
			if err != nil {
				writeError(ctx, xhttp.StatusBadRequest, "invalid schedule_date: "+r.ScheduleDate)
				return
			}
			d = d.Truncate(24 * time.Hour)
			recipient.ScheduleDate = &d
		}
		p.Recipients = append(p.Recipients, recipient)
	}

	summary, err := h.svc.Send(ctx, auth.FromCtx(ctx), p)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	writeJSON(ctx, xhttp.StatusOK, summary)
}
