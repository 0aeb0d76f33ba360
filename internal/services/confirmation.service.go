package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/repository"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/logger"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/prom"
)

var (
	ErrConfirmationNotFound = errors.New("confirmation not found")
	ErrConfirmationExpired  = errors.New("confirmation link expired")
	ErrInvalidAction        = errors.New("invalid confirmation action")
)

type ConfirmationScheduleRepository interface {
	FindByTransporterAndDate(ctx context.Context, transporterID string, date time.Time) (*model.ScheduleEntry, error)
	UpdateStatus(ctx context.Context, id int64, status model.EntryStatus) error
	AppendConfirmationRecord(ctx context.Context, rec *model.ConfirmationRecord) (*model.ConfirmationRecord, error)
}

type ConfirmationService struct {
	confirmationRepo ConfirmationRepository
	scheduleRepo     ConfirmationScheduleRepository
	messageLogRepo   MessageLogRepository
	now              func() time.Time
}

func NewConfirmationService(
	confirmationRepo ConfirmationRepository,
	scheduleRepo ConfirmationScheduleRepository,
	messageLogRepo MessageLogRepository,
) *ConfirmationService {
	return &ConfirmationService{
		confirmationRepo: confirmationRepo,
		scheduleRepo:     scheduleRepo,
		messageLogRepo:   messageLogRepo,
		now:              time.Now,
	}
}

// Get resolves a confirmation link for display. Unknown tokens and
// expired links are the only failures the recipient can see.
func (s *ConfirmationService) Get(ctx context.Context, token string) (*model.ConfirmationView, error) {
	confirmation, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}

	view := &model.ConfirmationView{
		EmployeeName: confirmation.EmployeeName,
		Status:       confirmation.Status,
		ScheduleDate: confirmation.ScheduleDate,
	}

	if entry, err := s.scheduleRepo.FindByTransporterAndDate(ctx, confirmation.TransporterID, confirmation.ScheduleDate); err == nil {
		view.WeekDay = entry.WeekDay
		view.Type = entry.Type
		view.ShiftTime = entry.ShiftTime
		view.Van = entry.Van
	}

	return view, nil
}

// Act applies the recipient's decision. The action lands in three
// places: the confirmation row, the schedule day's status and channel
// trail, and the message log as a synthetic reply. A repeat submission
// overwrites the previous decision.
func (s *ConfirmationService) Act(ctx context.Context, token, action, remarks string) (*model.ConfirmationView, error) {
	action = strings.TrimSpace(action)
	if action != model.ActionConfirm && action != model.ActionChangeRequest {
		return nil, ErrInvalidAction
	}

	confirmation, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if action == model.ActionConfirm {
		err = s.confirmationRepo.SetConfirmed(ctx, confirmation.ID, at)
	} else {
		err = s.confirmationRepo.SetChangeRequested(ctx, confirmation.ID, at, remarks)
	}
	if err != nil {
		return nil, err
	}

	s.mirrorToSchedule(ctx, confirmation, action, remarks)
	s.mirrorToMessageLog(ctx, confirmation, action, remarks, at)

	prom.IncCounterVec(prom.SystemMessaging, prom.MetricConfirmationActions, action)
	logger.Info("Confirmation action recorded",
		"transporter_id", confirmation.TransporterID,
		"schedule_date", confirmation.ScheduleDate.Format("2006-01-02"),
		"action", action,
	)

	return s.Get(ctx, token)
}

func (s *ConfirmationService) find(ctx context.Context, token string) (*model.ScheduleConfirmation, error) {
	confirmation, err := s.confirmationRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrConfirmationNotFound) {
			return nil, ErrConfirmationNotFound
		}
		return nil, err
	}
	if confirmation.Expired(s.now().UTC()) {
		return nil, ErrConfirmationExpired
	}
	return confirmation, nil
}

// mirrorToSchedule is best-effort: the confirmation row is the source of
// truth, the schedule mirrors it when the row can still be resolved.
func (s *ConfirmationService) mirrorToSchedule(ctx context.Context, confirmation *model.ScheduleConfirmation, action, remarks string) {
	entry, err := s.scheduleRepo.FindByTransporterAndDate(ctx, confirmation.TransporterID, confirmation.ScheduleDate)
	if err != nil {
		if !errors.Is(err, repository.ErrScheduleNotFound) {
			logger.Warn("Schedule lookup failed for confirmation mirror", "transporter_id", confirmation.TransporterID, "error", err)
		}
		return
	}

	status := model.EntryStatusConfirmed
	if action == model.ActionChangeRequest {
		status = model.EntryStatusChangeRequested
	}
	if err := s.scheduleRepo.UpdateStatus(ctx, entry.ID, status); err != nil {
		logger.Warn("Failed to mirror confirmation onto schedule", "schedule_id", entry.ID, "error", err)
	}

	channel, ok := model.ChannelForMessageType(confirmation.MessageType)
	if !ok {
		return
	}
	rec := &model.ConfirmationRecord{
		ScheduleEntryID: entry.ID,
		Channel:         channel,
		Status:          model.RecordStatusReceived,
		Reply:           syntheticReply(action, remarks),
		CreatedBy:       confirmation.EmployeeName,
		MessageLogID:    confirmation.MessageLogID,
	}
	if _, err := s.scheduleRepo.AppendConfirmationRecord(ctx, rec); err != nil {
		logger.Warn("Failed to append confirmation record", "schedule_id", entry.ID, "channel", channel, "error", err)
	}
}

func (s *ConfirmationService) mirrorToMessageLog(ctx context.Context, confirmation *model.ScheduleConfirmation, action, remarks string, at time.Time) {
	if confirmation.MessageLogID == nil {
		return
	}
	reply := syntheticReply(action, remarks)
	if err := s.messageLogRepo.MarkReplied(ctx, *confirmation.MessageLogID, reply, at, ""); err != nil {
		logger.Warn("Failed to mirror confirmation onto message log", "message_log_id", *confirmation.MessageLogID, "error", err)
	}
}

func syntheticReply(action, remarks string) string {
	if action == model.ActionChangeRequest && strings.TrimSpace(remarks) != "" {
		return action + ": " + strings.TrimSpace(remarks)
	}
	return action
}
