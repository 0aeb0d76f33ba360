package model

import (
	"errors"
	"strings"
	"time"
)

// MessageLogStatus is the lifecycle state of an outbound send attempt.
// Transitions only move forward: sent -> delivered -> received_reply,
// where received_reply may also follow sent directly. failed is terminal.
type MessageLogStatus string

const (
	MessageLogStatusSent          MessageLogStatus = "sent"
	MessageLogStatusDelivered     MessageLogStatus = "delivered"
	MessageLogStatusReceivedReply MessageLogStatus = "received_reply"
	MessageLogStatusFailed        MessageLogStatus = "failed"
)

type MessageLog struct {
	ID                int64            `json:"id"`
	ProviderMessageID *string          `json:"provider_message_id,omitempty"`
	FromNumber        string           `json:"from_number"`
	ToNumber          string           `json:"to_number"`
	RecipientName     string           `json:"recipient_name"`
	Type              string           `json:"type"`
	Content           string           `json:"content"`
	Status            MessageLogStatus `json:"status"`
	SentAt            *time.Time       `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time       `json:"delivered_at,omitempty"`
	RepliedAt         *time.Time       `json:"replied_at,omitempty"`
	ErrorMessage      string           `json:"error_message,omitempty"`
	ReplyContent      string           `json:"reply_content,omitempty"`
	DeliveryPayload   string           `json:"-"`
	ReplyPayload      string           `json:"-"`
	CreatedAt         time.Time        `json:"created_at"`
}

// Recipient is one fan-out target of a send call. Message overrides the
// shared template when set. TransporterID plus the optional ScheduleDate
// tie the send back to a schedule row.
type Recipient struct {
	Phone         string     `json:"phone"`
	Name          string     `json:"name,omitempty"`
	Message       string     `json:"message,omitempty"`
	TransporterID string     `json:"transporter_id,omitempty"`
	ScheduleDate  *time.Time `json:"schedule_date,omitempty"`
	YearWeek      string     `json:"year_week,omitempty"`
}

type SendRequest struct {
	Recipients  []Recipient
	Message     string
	From        string
	MessageType string
}

func (r SendRequest) Validate() error {
	if len(r.Recipients) == 0 {
		return errors.New("at least one recipient is required")
	}
	for _, rec := range r.Recipients {
		if strings.TrimSpace(rec.Phone) == "" {
			return errors.New("recipient phone is required")
		}
	}
	if strings.TrimSpace(r.Message) == "" {
		hasOverrides := true
		for _, rec := range r.Recipients {
			if strings.TrimSpace(rec.Message) == "" {
				hasOverrides = false
				break
			}
		}
		if !hasOverrides {
			return errors.New("message is required")
		}
	}
	return nil
}

// ScheduleSyncOutcome reports whether the best-effort schedule side-effect
// of a send landed. It never fails the send itself.
type ScheduleSyncOutcome string

const (
	ScheduleSyncOK      ScheduleSyncOutcome = "ok"
	ScheduleSyncSkipped ScheduleSyncOutcome = "skipped"
	ScheduleSyncError   ScheduleSyncOutcome = "error"
)

type SendRecipientResult struct {
	Phone             string              `json:"phone"`
	Name              string              `json:"name,omitempty"`
	Success           bool                `json:"success"`
	MessageLogID      int64               `json:"message_log_id,omitempty"`
	ProviderMessageID string              `json:"provider_message_id,omitempty"`
	ConfirmationToken string              `json:"confirmation_token,omitempty"`
	Error             string              `json:"error,omitempty"`
	ScheduleSync      ScheduleSyncOutcome `json:"schedule_sync"`
}

type SendSummary struct {
	Success bool                  `json:"success"`
	Sent    int                   `json:"sent"`
	Failed  int                   `json:"failed"`
	Total   int                   `json:"total"`
	Results []SendRecipientResult `json:"results"`
}
