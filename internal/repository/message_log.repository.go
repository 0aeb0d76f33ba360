package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/model"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/pg"
)

var (
	// ErrMessageLogNotFound is returned when a message log row does not exist.
	ErrMessageLogNotFound = errors.New("message log not found")
)

type MessageLogRepository struct {
	*pg.DB
}

func NewMessageLogRepository(db *pg.DB) *MessageLogRepository {
	return &MessageLogRepository{
		db,
	}
}

func (r *MessageLogRepository) Create(ctx context.Context, log *model.MessageLog) (*model.MessageLog, error) {
	entity := toMessageLogEntity(log)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toMessageLogModel(entity), nil
}

func (r *MessageLogRepository) FindByID(ctx context.Context, id int64) (*model.MessageLog, error) {
	var entity MessageLogEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageLogNotFound
		}
		return nil, err
	}
	return toMessageLogModel(&entity), nil
}

func (r *MessageLogRepository) FindByProviderMessageID(ctx context.Context, providerMessageID string) (*model.MessageLog, error) {
	var entity MessageLogEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("provider_message_id = ?", providerMessageID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageLogNotFound
		}
		return nil, err
	}
	return toMessageLogModel(&entity), nil
}

// FindLatestByToNumber returns the most recent row addressed to the phone
// number with one of the given statuses. Matching is exact first, then by
// last-10-digit suffix.
func (r *MessageLogRepository) FindLatestByToNumber(ctx context.Context, phone string, statuses []model.MessageLogStatus) (*model.MessageLog, error) {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}

	var entity MessageLogEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("to_number = ? AND status IN ?", phone, ss).
		Order("created_at DESC").
		First(&entity).
		Error
	if err == nil {
		return toMessageLogModel(&entity), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	suffix := lastDigits(phone, 10)
	if suffix == "" {
		return nil, ErrMessageLogNotFound
	}
	err = r.Read(ctx).WithContext(ctx).
		Where("to_number LIKE ? AND status IN ?", "%"+suffix, ss).
		Order("created_at DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageLogNotFound
		}
		return nil, err
	}
	return toMessageLogModel(&entity), nil
}

// MarkDelivered advances a row from sent to delivered. Rows already past
// sent keep their later status.
func (r *MessageLogRepository) MarkDelivered(ctx context.Context, id int64, at time.Time, rawPayload string) error {
	res := r.Write(ctx).WithContext(ctx).
		Model(&MessageLogEntity{}).
		Where("id = ? AND status = ?", id, string(model.MessageLogStatusSent)).
		Updates(map[string]interface{}{
			"status":           string(model.MessageLogStatusDelivered),
			"delivered_at":     at,
			"delivery_payload": rawPayload,
		})
	return res.Error
}

// MarkReplied advances a row to received_reply from sent or delivered.
func (r *MessageLogRepository) MarkReplied(ctx context.Context, id int64, reply string, at time.Time, rawPayload string) error {
	res := r.Write(ctx).WithContext(ctx).
		Model(&MessageLogEntity{}).
		Where("id = ? AND status IN ?", id, []string{
			string(model.MessageLogStatusSent),
			string(model.MessageLogStatusDelivered),
		}).
		Updates(map[string]interface{}{
			"status":        string(model.MessageLogStatusReceivedReply),
			"replied_at":    at,
			"reply_content": reply,
			"reply_payload": rawPayload,
		})
	return res.Error
}

func lastDigits(phone string, n int) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits) > n {
		digits = digits[len(digits)-n:]
	}
	return string(digits)
}
