package repository

import (
	"time"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
)

type MessageLogEntity struct {
	ID                int64      `db:"id"                  gorm:"primaryKey;autoIncrement;column:id"`
	ProviderMessageID *string    `db:"provider_message_id" gorm:"column:provider_message_id;uniqueIndex"`
	FromNumber        string     `db:"from_number"         gorm:"column:from_number"`
	ToNumber          string     `db:"to_number"           gorm:"column:to_number;index"`
	RecipientName     string     `db:"recipient_name"      gorm:"column:recipient_name"`
	Type              string     `db:"type"                gorm:"column:type"`
	Content           string     `db:"content"             gorm:"column:content"`
	Status            string     `db:"status"              gorm:"column:status;not null;index"`
	SentAt            *time.Time `db:"sent_at"             gorm:"column:sent_at"`
	DeliveredAt       *time.Time `db:"delivered_at"        gorm:"column:delivered_at"`
	RepliedAt         *time.Time `db:"replied_at"          gorm:"column:replied_at"`
	ErrorMessage      string     `db:"error_message"       gorm:"column:error_message"`
	ReplyContent      string     `db:"reply_content"       gorm:"column:reply_content"`
	DeliveryPayload   string     `db:"delivery_payload"    gorm:"column:delivery_payload"`
	ReplyPayload      string     `db:"reply_payload"       gorm:"column:reply_payload"`
	CreatedAt         time.Time  `db:"created_at"          gorm:"column:created_at;autoCreateTime"`
}

func (MessageLogEntity) TableName() string {
	return "message_logs"
}

func toMessageLogEntity(m *model.MessageLog) *MessageLogEntity {
	if m == nil {
		return nil
	}
	return &MessageLogEntity{
		ID:                m.ID,
		ProviderMessageID: m.ProviderMessageID,
		FromNumber:        m.FromNumber,
		ToNumber:          m.ToNumber,
		RecipientName:     m.RecipientName,
		Type:              m.Type,
		Content:           m.Content,
		Status:            string(m.Status),
		SentAt:            m.SentAt,
		DeliveredAt:       m.DeliveredAt,
		RepliedAt:         m.RepliedAt,
		ErrorMessage:      m.ErrorMessage,
		ReplyContent:      m.ReplyContent,
		DeliveryPayload:   m.DeliveryPayload,
		ReplyPayload:      m.ReplyPayload,
		CreatedAt:         m.CreatedAt,
	}
}

func toMessageLogModel(e *MessageLogEntity) *model.MessageLog {
	if e == nil {
		return nil
	}
	return &model.MessageLog{
		ID:                e.ID,
		ProviderMessageID: e.ProviderMessageID,
		FromNumber:        e.FromNumber,
		ToNumber:          e.ToNumber,
		RecipientName:     e.RecipientName,
		Type:              e.Type,
		Content:           e.Content,
		Status:            model.MessageLogStatus(e.Status),
		SentAt:            e.SentAt,
		DeliveredAt:       e.DeliveredAt,
		RepliedAt:         e.RepliedAt,
		ErrorMessage:      e.ErrorMessage,
		ReplyContent:      e.ReplyContent,
		DeliveryPayload:   e.DeliveryPayload,
		ReplyPayload:      e.ReplyPayload,
		CreatedAt:         e.CreatedAt,
	}
}
