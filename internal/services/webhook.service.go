package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/repository"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/logger"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/prom"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/redis"
)

const (
	EventDelivered = "message.delivered"
	EventReceived  = "message.received"

	webhookDedupPrefix = "webhook:event:"
	webhookDedupTTL    = 24 * time.Hour
)

var (
	ErrUnknownEvent = errors.New("unknown webhook event")
	// ErrBadEnvelope means the payload did not parse as JSON. Parsed
	// events with missing fields get ErrIncompleteEvent instead; only a
	// truly unparsable body may be rejected with a non-2xx answer.
	ErrBadEnvelope     = errors.New("malformed webhook envelope")
	ErrIncompleteEvent = errors.New("webhook event missing required fields")
)

// webhookEnvelope tolerates the two shapes the provider has shipped over
// time: fields nested under "data", and the same fields flattened onto
// the top level.
type webhookEnvelope struct {
	Event string          `json:"event"`
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data"`

	webhookEventData
}

type webhookEventData struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type WebhookEmployeeRepository interface {
	FindByPhone(ctx context.Context, phone string) (*model.Employee, error)
}

type WebhookService struct {
	messageLogRepo MessageLogRepository
	scheduleRepo   ScheduleSyncRepository
	employeeRepo   WebhookEmployeeRepository
	cache          redis.RedisAdapter
	now            func() time.Time
}

func NewWebhookService(
	messageLogRepo MessageLogRepository,
	scheduleRepo ScheduleSyncRepository,
	employeeRepo WebhookEmployeeRepository,
	cache redis.RedisAdapter,
) *WebhookService {
	return &WebhookService{
		messageLogRepo: messageLogRepo,
		scheduleRepo:   scheduleRepo,
		employeeRepo:   employeeRepo,
		cache:          cache,
		now:            time.Now,
	}
}

// Process parses one webhook payload and applies its side effects. The
// returned event name is for logging; callers respond 200 regardless of
// the error, the provider must never be driven into retry storms by our
// own reconciliation problems.
func (s *WebhookService) Process(ctx context.Context, payload []byte) (string, error) {
	envelope, data, err := parseEnvelope(payload)
	if err != nil {
		return "", err
	}

	event := envelope.Event
	if event == "" {
		event = envelope.Type
	}

	if s.seenBefore(envelope.ID, event) {
		logger.Info("Duplicate webhook event skipped", "event", event, "event_id", envelope.ID)
		return event, nil
	}

	prom.IncCounterVec(prom.SystemMessaging, prom.MetricWebhookEvents, event)

	switch event {
	case EventDelivered:
		return event, s.processDelivered(ctx, data, payload)
	case EventReceived:
		return event, s.processReceived(ctx, data, payload)
	default:
		return event, ErrUnknownEvent
	}
}

func parseEnvelope(payload []byte) (*webhookEnvelope, *webhookEventData, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, nil, ErrBadEnvelope
	}

	data := envelope.webhookEventData
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, nil, ErrBadEnvelope
		}
	}
	return &envelope, &data, nil
}

// seenBefore is a best-effort dedup on the provider's event id. When the
// cache is down we process the event anyway: the downstream transitions
// are forward-only, so a replay is harmless.
func (s *WebhookService) seenBefore(eventID, event string) bool {
	if s.cache == nil || eventID == "" {
		return false
	}
	fresh, err := s.cache.SetNX(webhookDedupPrefix+eventID, []byte(event), webhookDedupTTL)
	if err != nil {
		logger.Warn("Webhook dedup cache unavailable", "error", err)
		return false
	}
	return !fresh
}

func (s *WebhookService) processDelivered(ctx context.Context, data *webhookEventData, payload []byte) error {
	if data.MessageID == "" {
		return ErrIncompleteEvent
	}
	now := s.now().UTC()

	log, err := s.messageLogRepo.FindByProviderMessageID(ctx, data.MessageID)
	if errors.Is(err, repository.ErrMessageLogNotFound) {
		// A delivery report for a send we have no record of. Keep it as
		// a stub row so a later reply still correlates.
		log, err = s.messageLogRepo.Create(ctx, &model.MessageLog{
			ProviderMessageID: &data.MessageID,
			ToNumber:          data.To,
			Status:            model.MessageLogStatusDelivered,
			DeliveredAt:       &now,
			DeliveryPayload:   string(payload),
		})
		if err != nil {
			return err
		}
		logger.Warn("Delivery report without matching send, stub row created", "provider_message_id", data.MessageID, "message_log_id", log.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.messageLogRepo.MarkDelivered(ctx, log.ID, now, string(payload)); err != nil {
		return err
	}

	s.appendChannelRecord(ctx, log, model.RecordStatusDelivered, "", data.MessageID)

	logger.Info("Delivery confirmed", "provider_message_id", data.MessageID, "to", log.ToNumber)
	return nil
}

func (s *WebhookService) processReceived(ctx context.Context, data *webhookEventData, payload []byte) error {
	if data.From == "" {
		return ErrIncompleteEvent
	}
	now := s.now().UTC()
	reply := strings.TrimSpace(data.Content)

	log, err := s.messageLogRepo.FindLatestByToNumber(ctx, data.From, []model.MessageLogStatus{
		model.MessageLogStatusSent,
		model.MessageLogStatusDelivered,
	})
	if errors.Is(err, repository.ErrMessageLogNotFound) {
		// Inbound message with no open outbound to attach to. Record it
		// anyway, dispatchers review these by hand.
		stub, err := s.messageLogRepo.Create(ctx, &model.MessageLog{
			ToNumber:     data.From,
			Status:       model.MessageLogStatusReceivedReply,
			RepliedAt:    &now,
			ReplyContent: reply,
			ReplyPayload: string(payload),
		})
		if err != nil {
			return err
		}
		logger.Warn("Reply without matching send, stub row created", "from", data.From, "message_log_id", stub.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.messageLogRepo.MarkReplied(ctx, log.ID, reply, now, string(payload)); err != nil {
		return err
	}

	s.appendChannelRecord(ctx, log, model.RecordStatusReceived, reply, providerID(log))

	logger.Info("Reply received", "from", data.From, "message_log_id", log.ID)
	return nil
}

// appendChannelRecord writes the delivery or reply onto the schedule
// row's confirmation trail. The schedule row is located through the
// employee's phone number, so a miss is common and never an error.
func (s *WebhookService) appendChannelRecord(ctx context.Context, log *model.MessageLog, status, reply, providerMessageID string) {
	channel, ok := model.ChannelForMessageType(log.Type)
	if !ok {
		return
	}

	employee, err := s.employeeRepo.FindByPhone(ctx, log.ToNumber)
	if err != nil {
		if !errors.Is(err, repository.ErrEmployeeNotFound) {
			logger.Warn("Employee lookup failed during webhook reconciliation", "phone", log.ToNumber, "error", err)
		}
		return
	}

	entry, err := s.scheduleRepo.FindLatestByTransporter(ctx, employee.TransporterID)
	if err != nil {
		if !errors.Is(err, repository.ErrScheduleNotFound) {
			logger.Warn("Schedule lookup failed during webhook reconciliation", "transporter_id", employee.TransporterID, "error", err)
		}
		return
	}

	rec := &model.ConfirmationRecord{
		ScheduleEntryID:   entry.ID,
		Channel:           channel,
		Status:            status,
		Reply:             reply,
		CreatedBy:         "webhook",
		MessageLogID:      &log.ID,
		ProviderMessageID: providerMessageID,
	}
	if _, err := s.scheduleRepo.AppendConfirmationRecord(ctx, rec); err != nil {
		logger.Warn("Failed to append webhook channel record", "schedule_id", entry.ID, "channel", channel, "error", err)
	}
}

func providerID(log *model.MessageLog) string {
	if log.ProviderMessageID == nil {
		return ""
	}
	return *log.ProviderMessageID
}
