package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/auth"
	gateway "github.com/aivisualpro/SYMXSystems-sub002/internal/gateways"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/repository"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/logger"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/prom"
)

// ConfirmationLinkPlaceholder in a message body is replaced per recipient
// with a freshly minted single-use confirmation URL.
const ConfirmationLinkPlaceholder = "{confirmation_link}"

type MessageLogRepository interface {
	Create(ctx context.Context, log *model.MessageLog) (*model.MessageLog, error)
	FindByID(ctx context.Context, id int64) (*model.MessageLog, error)
	FindByProviderMessageID(ctx context.Context, providerMessageID string) (*model.MessageLog, error)
	FindLatestByToNumber(ctx context.Context, phone string, statuses []model.MessageLogStatus) (*model.MessageLog, error)
	MarkDelivered(ctx context.Context, id int64, at time.Time, rawPayload string) error
	MarkReplied(ctx context.Context, id int64, reply string, at time.Time, rawPayload string) error
}

type ConfirmationRepository interface {
	Create(ctx context.Context, c *model.ScheduleConfirmation) (*model.ScheduleConfirmation, error)
	FindByToken(ctx context.Context, token string) (*model.ScheduleConfirmation, error)
	LinkMessageLog(ctx context.Context, id int64, messageLogID int64) error
	SetConfirmed(ctx context.Context, id int64, at time.Time) error
	SetChangeRequested(ctx context.Context, id int64, at time.Time, remarks string) error
}

type ScheduleSyncRepository interface {
	FindByTransporterAndDate(ctx context.Context, transporterID string, date time.Time) (*model.ScheduleEntry, error)
	FindLatestByTransporter(ctx context.Context, transporterID string) (*model.ScheduleEntry, error)
	AppendConfirmationRecord(ctx context.Context, rec *model.ConfirmationRecord) (*model.ConfirmationRecord, error)
}

type SMSGateway interface {
	SendSMS(ctx context.Context, req *gateway.SendRequest) (*gateway.SendResponse, error)
}

type MessagingConfig struct {
	PublicBaseURL       string
	DefaultFrom         string
	ConfirmationTTLDays int
}

type MessagingService struct {
	gateway          SMSGateway
	messageLogRepo   MessageLogRepository
	confirmationRepo ConfirmationRepository
	scheduleRepo     ScheduleSyncRepository
	config           MessagingConfig
	now              func() time.Time
}

func NewMessagingService(
	gw SMSGateway,
	messageLogRepo MessageLogRepository,
	confirmationRepo ConfirmationRepository,
	scheduleRepo ScheduleSyncRepository,
	config MessagingConfig,
) *MessagingService {
	if config.ConfirmationTTLDays <= 0 {
		config.ConfirmationTTLDays = 7
	}
	return &MessagingService{
		gateway:          gw,
		messageLogRepo:   messageLogRepo,
		confirmationRepo: confirmationRepo,
		scheduleRepo:     scheduleRepo,
		config:           config,
		now:              time.Now,
	}
}

// Send fans the request out to every recipient sequentially. Each
// recipient fails or succeeds on its own; the summary reports both
// counts. There are no retries, a provider rejection is final.
func (s *MessagingService) Send(ctx context.Context, session *auth.Session, req model.SendRequest) (*model.SendSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	from := req.From
	if from == "" {
		from = s.config.DefaultFrom
	}

	summary := &model.SendSummary{
		Total: len(req.Recipients),
	}
	for _, recipient := range req.Recipients {
		result := s.sendOne(ctx, session, recipient, req.Message, from, req.MessageType)
		if result.Success {
			summary.Sent++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}
	summary.Success = summary.Failed == 0

	logger.Info("Send fan-out finished",
		"total", summary.Total,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"message_type", req.MessageType,
		"user", sessionName(session),
	)
	return summary, nil
}

func (s *MessagingService) sendOne(ctx context.Context, session *auth.Session, recipient model.Recipient, sharedMessage, from, messageType string) model.SendRecipientResult {
	result := model.SendRecipientResult{
		Phone:        recipient.Phone,
		Name:         recipient.Name,
		ScheduleSync: model.ScheduleSyncSkipped,
	}

	content := recipient.Message
	if strings.TrimSpace(content) == "" {
		content = sharedMessage
	}

	var confirmation *model.ScheduleConfirmation
	if strings.Contains(content, ConfirmationLinkPlaceholder) {
		// a token is only mintable for a recipient we can tie back to a
		// transporter; otherwise the placeholder is stripped and the
		// message goes out without a link
		if recipient.TransporterID == "" {
			content = strings.TrimSpace(strings.ReplaceAll(content, ConfirmationLinkPlaceholder, ""))
			logger.Warn("Confirmation link requested for recipient without transporter id, sending without link", "to", recipient.Phone)
		} else {
			minted, err := s.mintConfirmation(ctx, recipient, messageType)
			if err != nil {
				result.Error = "mint confirmation: " + err.Error()
				prom.IncCounter(prom.SystemMessaging, prom.MetricMessagesFailed)
				return result
			}
			confirmation = minted
			result.ConfirmationToken = minted.Token
			content = strings.ReplaceAll(content, ConfirmationLinkPlaceholder, s.confirmationURL(minted.Token))
		}
	}

	resp, sendErr := s.gateway.SendSMS(ctx, &gateway.SendRequest{
		To:      recipient.Phone,
		From:    from,
		Content: content,
	})

	now := s.now().UTC()
	log := &model.MessageLog{
		FromNumber:    from,
		ToNumber:      recipient.Phone,
		RecipientName: recipient.Name,
		Type:          messageType,
		Content:       content,
	}
	if sendErr != nil {
		log.Status = model.MessageLogStatusFailed
		log.ErrorMessage = sendErr.Error()
	} else {
		log.Status = model.MessageLogStatusSent
		log.ProviderMessageID = &resp.ID
		log.SentAt = &now
	}

	created, err := s.messageLogRepo.Create(ctx, log)
	if err != nil {
		logger.Error("Failed to persist message log", "to", recipient.Phone, "error", err)
	} else {
		result.MessageLogID = created.ID
		if confirmation != nil {
			if err := s.confirmationRepo.LinkMessageLog(ctx, confirmation.ID, created.ID); err != nil {
				logger.Warn("Failed to link confirmation to message log", "confirmation_id", confirmation.ID, "error", err)
			}
		}
	}

	if sendErr != nil {
		result.Error = sendErr.Error()
		prom.IncCounter(prom.SystemMessaging, prom.MetricMessagesFailed)
		return result
	}

	result.Success = true
	result.ProviderMessageID = resp.ID
	prom.IncCounter(prom.SystemMessaging, prom.MetricMessagesSent)

	result.ScheduleSync = s.syncSchedule(ctx, session, recipient, messageType, created, resp.ID)
	return result
}

func (s *MessagingService) mintConfirmation(ctx context.Context, recipient model.Recipient, messageType string) (*model.ScheduleConfirmation, error) {
	scheduleDate := s.now().UTC()
	if recipient.ScheduleDate != nil {
		scheduleDate = *recipient.ScheduleDate
	}

	return s.confirmationRepo.Create(ctx, &model.ScheduleConfirmation{
		Token:         newConfirmationToken(),
		TransporterID: recipient.TransporterID,
		EmployeeName:  recipient.Name,
		ScheduleDate:  scheduleDate,
		YearWeek:      recipient.YearWeek,
		MessageType:   messageType,
		Status:        model.ConfirmationStatusPending,
		ExpiresAt:     s.now().UTC().AddDate(0, 0, s.config.ConfirmationTTLDays),
	})
}

// syncSchedule appends the sent record to the schedule row's channel
// trail. It is best-effort: the SMS already went out, so a failure here
// is reported in the result but never fails the send.
func (s *MessagingService) syncSchedule(ctx context.Context, session *auth.Session, recipient model.Recipient, messageType string, log *model.MessageLog, providerMessageID string) model.ScheduleSyncOutcome {
	channel, ok := model.ChannelForMessageType(messageType)
	if !ok || recipient.TransporterID == "" {
		return model.ScheduleSyncSkipped
	}

	entry, err := s.resolveScheduleEntry(ctx, recipient)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return model.ScheduleSyncSkipped
		}
		logger.Warn("Schedule sync lookup failed", "transporter_id", recipient.TransporterID, "error", err)
		return model.ScheduleSyncError
	}

	rec := &model.ConfirmationRecord{
		ScheduleEntryID:   entry.ID,
		Channel:           channel,
		Status:            model.RecordStatusSent,
		CreatedBy:         sessionName(session),
		ProviderMessageID: providerMessageID,
	}
	if log != nil {
		rec.MessageLogID = &log.ID
	}

	if _, err := s.scheduleRepo.AppendConfirmationRecord(ctx, rec); err != nil {
		logger.Warn("Schedule sync append failed", "schedule_id", entry.ID, "channel", channel, "error", err)
		return model.ScheduleSyncError
	}
	return model.ScheduleSyncOK
}

func (s *MessagingService) resolveScheduleEntry(ctx context.Context, recipient model.Recipient) (*model.ScheduleEntry, error) {
	if recipient.ScheduleDate != nil {
		return s.scheduleRepo.FindByTransporterAndDate(ctx, recipient.TransporterID, *recipient.ScheduleDate)
	}
	return s.scheduleRepo.FindLatestByTransporter(ctx, recipient.TransporterID)
}

func (s *MessagingService) confirmationURL(token string) string {
	return strings.TrimRight(s.config.PublicBaseURL, "/") + "/public/confirm/" + token
}

// newConfirmationToken returns a 64-character hex-like token built from
// two UUIDs with the hyphens stripped.
func newConfirmationToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
