package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/fasthttp/router"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/auth"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/services"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/week"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/xhttp"
)

type ScheduleService interface {
	Generate(ctx context.Context, session *auth.Session, yearWeek string) (*model.GenerateResult, error)
	GetWeek(ctx context.Context, yearWeek string) (*model.WeekSchedule, error)
	ListWeeks(ctx context.Context) ([]string, error)
	UpdateEntryType(ctx context.Context, session *auth.Session, req model.UpdateByScheduleID) (*model.ScheduleEntry, error)
	UpdateEmployeeNote(ctx context.Context, session *auth.Session, req model.UpdateEmployeeNote) (*model.Employee, error)
	UpsertEntry(ctx context.Context, session *auth.Session, req model.UpsertByComposite) (*model.ScheduleEntry, bool, error)
}

type ScheduleHandler struct {
	svc ScheduleService
}

func RegisterScheduleRoutes(e *router.Group, secret string, h *ScheduleHandler) {
	e.POST("/schedules/generate", auth.Required(secret, h.Generate))
	e.GET("/schedules", auth.Required(secret, h.GetSchedules))
	e.PATCH("/schedules", auth.Required(secret, h.PatchSchedules))
}

func NewScheduleHandler(svc ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		svc: svc,
	}
}

type generateRequest struct {
	YearWeek string `json:"year_week"`
}

// patchScheduleRequest is the tagged union of the three supported
// mutations. The variant field decides which one runs.
type patchScheduleRequest struct {
	Variant string `json:"variant"`

	ScheduleID int64  `json:"schedule_id,omitempty"`
	Type       string `json:"type,omitempty"`

	EmployeeID int64  `json:"employee_id,omitempty"`
	Note       string `json:"note,omitempty"`

	TransporterID string `json:"transporter_id,omitempty"`
	Date          string `json:"date,omitempty"`
	YearWeek      string `json:"year_week,omitempty"`
	WeekDay       string `json:"week_day,omitempty"`
}

const (
	variantEntryType    = "entry_type"
	variantEmployeeNote = "employee_note"
	variantUpsert       = "upsert"
)

type weeksListResponse struct {
	Weeks []string `json:"weeks"`
}

type upsertResponse struct {
	Entry   *model.ScheduleEntry `json:"entry"`
	Created bool                 `json:"created"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ScheduleHandler) Generate(ctx *xhttp.RequestCtx) {
	var req generateRequest
	if len(ctx.PostBody()) > 0 {
		if err := readJSON(ctx, &req); err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}

	result, err := h.svc.Generate(ctx, auth.FromCtx(ctx), req.YearWeek)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoActiveEmployees):
			writeError(ctx, xhttp.StatusBadRequest, err.Error())
		case errors.Is(err, week.ErrInvalidFormat):
			writeError(ctx, xhttp.StatusBadRequest, err.Error())
		default:
			writeError(ctx, xhttp.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(ctx, xhttp.StatusOK, result)
}

// GetSchedules serves both shapes of the read surface: the weeks list
// when weeksList=true, otherwise the grid for the requested week.
func (h *ScheduleHandler) GetSchedules(ctx *xhttp.RequestCtx) {
	if strings.EqualFold(query(ctx, "weeksList"), "true") {
		weeks, err := h.svc.ListWeeks(ctx)
		if err != nil {
			writeError(ctx, xhttp.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(ctx, xhttp.StatusOK, weeksListResponse{Weeks: weeks})
		return
	}

	yearWeek := query(ctx, "yearWeek")
	if yearWeek == "" {
		writeError(ctx, xhttp.StatusBadRequest, "yearWeek is required")
		return
	}

	schedule, err := h.svc.GetWeek(ctx, yearWeek)
	if err != nil {
		if errors.Is(err, week.ErrInvalidFormat) {
			writeError(ctx, xhttp.StatusBadRequest, err.Error())
			return
		}
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(ctx, xhttp.StatusOK, schedule)
}

func (h *ScheduleHandler) PatchSchedules(ctx *xhttp.RequestCtx) {
	var req patchScheduleRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	session := auth.FromCtx(ctx)

	switch req.Variant {
	case variantEntryType:
		entry, err := h.svc.UpdateEntryType(ctx, session, model.UpdateByScheduleID{
			ScheduleID: req.ScheduleID,
			Type:       req.Type,
		})
		if err != nil {
			writeMutationError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, entry)

	case variantEmployeeNote:
		employee, err := h.svc.UpdateEmployeeNote(ctx, session, model.UpdateEmployeeNote{
			EmployeeID: req.EmployeeID,
			Note:       req.Note,
		})
		if err != nil {
			writeMutationError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, employee)

	case variantUpsert:
		date, err := parseDate(req.Date)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "invalid date: "+req.Date)
			return
		}
		entry, created, err := h.svc.UpsertEntry(ctx, session, model.UpsertByComposite{
			TransporterID: req.TransporterID,
			Date:          date,
			YearWeek:      req.YearWeek,
			WeekDay:       req.WeekDay,
			Type:          req.Type,
		})
		if err != nil {
			writeMutationError(ctx, err)
			return
		}
		status := xhttp.StatusOK
		if created {
			status = xhttp.StatusCreated
		}
		writeJSON(ctx, status, upsertResponse{Entry: entry, Created: created})

	default:
		writeError(ctx, xhttp.StatusBadRequest, "unknown variant: "+req.Variant)
	}
}

func writeMutationError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrScheduleNotFound), errors.Is(err, services.ErrEmployeeNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	default:
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	}
}
